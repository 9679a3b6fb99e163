package models

import "time"

// Attachment references a blob stored on the filesystem; Filepath is the
// stored name relative to the files root.
type Attachment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	Filename  string    `json:"filename"`
	Filepath  string    `json:"filepath"`
	Filesize  int64     `json:"filesize"`
	Mimetype  string    `json:"mimetype"`
	CreatedAt time.Time `json:"created_at"`
}

type AttachmentView struct {
	Attachment
	Uploader *UserRef `json:"uploader,omitempty"`
}

package services

import (
	"context"
	"log"
	"time"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
	"tasktracker/internal/pdf"
	"tasktracker/internal/repositories"
)

// ReportService renders downloadable PDF summaries.
type ReportService interface {
	TeamReport(ctx context.Context, actorID, teamID int64) ([]byte, string, error)
}

type reportService struct {
	viewAssembler
	tasks     repositories.TaskRepository
	generator pdf.Generator
}

func NewReportService(
	teams repositories.TeamRepository,
	users repositories.UserRepository,
	tasks repositories.TaskRepository,
	generator pdf.Generator,
) ReportService {
	return &reportService{
		viewAssembler: viewAssembler{users: users, teams: teams},
		tasks:         tasks,
		generator:     generator,
	}
}

func (s *reportService) TeamReport(ctx context.Context, actorID, teamID int64) ([]byte, string, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, "", err
	}
	if team == nil {
		return nil, "", apperr.NotFound("Team")
	}
	member, err := s.teams.FindMember(ctx, teamID, actorID)
	if err != nil {
		return nil, "", err
	}
	if member == nil {
		return nil, "", apperr.Forbidden("You are not a member of this team")
	}

	page := models.Page{Number: 1, Limit: 500, SortBy: "created_at", Desc: true}
	tasks, _, err := s.tasks.FindAll(ctx, models.TaskFilter{TeamID: &teamID}, page)
	if err != nil {
		return nil, "", err
	}
	views, err := s.taskViews(ctx, tasks)
	if err != nil {
		return nil, "", err
	}

	data := pdf.TeamReportData{
		TeamName:    team.Name,
		GeneratedAt: time.Now(),
		Tasks:       views,
	}
	out, err := s.generator.TeamReport(data)
	if err != nil {
		return nil, "", err
	}
	log.Printf("[report][team] team=%d actor=%d tasks=%d", teamID, actorID, len(views))

	filename := "team-report-" + team.Name + ".pdf"
	return out, filename, nil
}

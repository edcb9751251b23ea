package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MyAgentHubs/logifyer/internal/db"
	"github.com/MyAgentHubs/logifyer/internal/score"
)

var allTools = []Tool{
	{
		Name: "journal_context",
		Description: `Overview of the relationship journal: every active person with their current score and grade,
recently logged incidents, the scoring settings, and row counts.

Call this before answering questions about how someone has been treating the user.
EXAMPLE: journal_context({since: "7d"})`,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"since": map[string]any{"type": "string", "description": "Window for recent incidents: 2h|24h|7d|ISO date (default 7d)"},
				"limit": map[string]any{"type": "integer", "description": "Max recent incidents (default 20)"},
			},
		},
	},
	{
		Name:        "journal_people",
		Description: `List people in the journal with score and grade (A >= 80, B >= 50, C >= 0, D >= -49, F below).`,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"include_archived": map[string]any{"type": "boolean", "description": "Include archived people"},
			},
		},
	},
	{
		Name: "journal_person",
		Description: `One person's score, grade and incident history, newest first.
EXAMPLE: journal_person({id: 3, since: "30d"})`,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":    map[string]any{"type": "integer", "description": "Person id"},
				"since": map[string]any{"type": "string", "description": "Only incidents in this window: 2h|24h|7d|ISO date"},
			},
			"required": []string{"id"},
		},
	},
	{
		Name: "journal_log_incident",
		Description: `Log an incident against a person. Points default to the category weight and must carry the
category's sign. Major incidents are multiplied by the configured major multiplier.
EXAMPLE: journal_log_incident({person_id: 3, category_id: 1, major: true, note: "Bailed an hour before dinner"})`,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"person_id":   map[string]any{"type": "integer"},
				"category_id": map[string]any{"type": "integer"},
				"points":      map[string]any{"type": "integer", "description": "Base points; omit to use the category weight"},
				"major":       map[string]any{"type": "boolean"},
				"note":        map[string]any{"type": "string"},
			},
			"required": []string{"person_id", "category_id"},
		},
	},
	{
		Name:        "journal_categories",
		Description: `List incident categories with their weights. Use the ids with journal_log_incident.`,
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	},
	{
		Name:        "journal_add_person",
		Description: `Add a person to the journal. relationship_type defaults to "friend".`,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":              map[string]any{"type": "string"},
				"relationship_type": map[string]any{"type": "string", "description": "friend|family|partner|coworker|..."},
			},
			"required": []string{"name"},
		},
	},
}

func (s *Server) dispatch(ctx context.Context, name string, args json.RawMessage) (any, error) {
	switch name {
	case "journal_context":
		return s.handleContext(ctx, args)
	case "journal_people":
		return s.handlePeople(ctx, args)
	case "journal_person":
		return s.handlePerson(ctx, args)
	case "journal_log_incident":
		return s.handleLogIncident(ctx, args)
	case "journal_categories":
		return s.handleCategories(ctx)
	case "journal_add_person":
		return s.handleAddPerson(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// scoredPerson is a person plus their current score.
type scoredPerson struct {
	db.Person
	Score int         `json:"score"`
	Grade score.Grade `json:"grade"`
}

func (s *Server) scorePeople(ctx context.Context, people []db.Person) ([]scoredPerson, error) {
	now := s.now()
	out := make([]scoredPerson, 0, len(people))
	for _, p := range people {
		total, err := s.db.PersonScore(ctx, p.ID, now)
		if err != nil {
			return nil, err
		}
		out = append(out, scoredPerson{Person: p, Score: total, Grade: score.GradeFor(total)})
	}
	return out, nil
}

func (s *Server) handlePeople(ctx context.Context, args json.RawMessage) (any, error) {
	var p struct {
		IncludeArchived bool `json:"include_archived"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	people, err := s.db.ListPeople(ctx, p.IncludeArchived)
	if err != nil {
		return nil, err
	}
	scored, err := s.scorePeople(ctx, people)
	if err != nil {
		return nil, err
	}
	return map[string]any{"people": scored, "count": len(scored)}, nil
}

func (s *Server) handlePerson(ctx context.Context, args json.RawMessage) (any, error) {
	var p struct {
		ID    int64  `json:"id"`
		Since string `json:"since"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if p.ID <= 0 {
		return nil, errors.New("id is required")
	}
	start, err := db.ParseSince(p.Since, s.now())
	if err != nil {
		return nil, err
	}

	person, err := s.db.GetPerson(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	scored, err := s.scorePeople(ctx, []db.Person{*person})
	if err != nil {
		return nil, err
	}
	incidents, err := s.db.ListIncidentsByPerson(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	incidents = db.FilterSince(incidents, start)
	if incidents == nil {
		incidents = []db.Incident{}
	}
	return map[string]any{
		"person":    scored[0],
		"incidents": incidents,
		"count":     len(incidents),
	}, nil
}

func (s *Server) handleLogIncident(ctx context.Context, args json.RawMessage) (any, error) {
	var p struct {
		PersonID   int64   `json:"person_id"`
		CategoryID int64   `json:"category_id"`
		Points     *int    `json:"points"`
		Major      bool    `json:"major"`
		Note       *string `json:"note"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if p.PersonID <= 0 || p.CategoryID <= 0 {
		return nil, errors.New("person_id and category_id are required")
	}

	points := 0
	if p.Points != nil {
		points = *p.Points
	} else {
		cat, err := s.db.GetCategory(ctx, p.CategoryID)
		if err != nil {
			return nil, err
		}
		points = cat.DefaultPoints
	}

	inc, err := s.db.LogIncident(ctx, p.PersonID, p.CategoryID, points, p.Major, p.Note)
	if err != nil {
		return nil, err
	}
	total, err := s.db.PersonScore(ctx, p.PersonID, s.now())
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"incident": inc,
		"score":    total,
		"grade":    score.GradeFor(total),
	}, nil
}

func (s *Server) handleCategories(ctx context.Context) (any, error) {
	cats, err := s.db.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []db.Category{}
	}
	return map[string]any{"categories": cats, "count": len(cats)}, nil
}

func (s *Server) handleAddPerson(ctx context.Context, args json.RawMessage) (any, error) {
	var p struct {
		Name             string `json:"name"`
		RelationshipType string `json:"relationship_type"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, errors.New("name is required")
	}
	id, err := s.db.AddPerson(ctx, p.Name, p.RelationshipType, nil)
	if err != nil {
		return nil, err
	}
	return s.db.GetPerson(ctx, id)
}

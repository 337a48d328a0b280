package audit

import (
	"context"
	"sort"
	"strings"

	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/access"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
	"github.com/branchdesk/branchdesk-api/pkg/clock"
	"github.com/branchdesk/branchdesk-api/pkg/textnorm"
)

// Timeline bounds.
const (
	DefaultStreamCap = 200
	DefaultLimit     = 100
	MaxLimit         = 400
)

// Append records one entry through repo, which must be the AuditRepository of
// the transaction that performs the mutation. A blank actor is recorded as
// "system" and the action is cut to AuditActionMax characters.
func Append(ctx context.Context, repo repository.AuditRepository, clk clock.Clock, e entity.AuditEntry) error {
	if strings.TrimSpace(e.Actor) == "" {
		e.Actor = entity.SystemActor
	}
	e.Action, _ = textnorm.Truncate(e.Action, entity.AuditActionMax)
	if e.At.IsZero() {
		e.At = clk.Now().UTC()
	}
	if err := repo.Append(ctx, &e); err != nil {
		return domain.Persistence("audit.Append", err)
	}
	return nil
}

// AuditUseCase reads the merged history.
type AuditUseCase struct {
	repos     repository.Repos
	streamCap int
}

// NewAuditUseCase builds the use case. streamCap <= 0 uses DefaultStreamCap.
func NewAuditUseCase(repos repository.Repos, streamCap int) *AuditUseCase {
	if streamCap <= 0 {
		streamCap = DefaultStreamCap
	}
	return &AuditUseCase{repos: repos, streamCap: streamCap}
}

// Timeline merges the most recent order and complaint entries visible to p,
// newest first. Admin actions (NoBranch) are only visible to admins.
func (uc *AuditUseCase) Timeline(ctx context.Context, p entity.Principal, limit int) (*dto.TimelineResponse, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	scope := access.Visible(p)

	var merged []*entity.AuditEntry
	for _, stream := range []entity.AuditStream{entity.StreamOrder, entity.StreamComplaint} {
		entries, err := uc.repos.Audit.Recent(ctx, repository.AuditQuery{Stream: stream, Scope: scope, Limit: uc.streamCap})
		if err != nil {
			return nil, domain.Persistence("audit.Timeline", err)
		}
		merged = append(merged, entries...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].At.Equal(merged[j].At) {
			return merged[i].At.After(merged[j].At)
		}
		return merged[i].ID > merged[j].ID
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}

	names, err := uc.branchNames(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.TimelineResponse{Items: make([]dto.AuditEntryResponse, 0, len(merged))}
	for _, e := range merged {
		out.Items = append(out.Items, dto.AuditEntryResponse{
			ID:        e.ID,
			Stream:    string(e.Stream),
			SubjectID: e.SubjectID,
			Actor:     e.Actor,
			Action:    e.Action,
			At:        e.At,
			BranchID:  e.BranchID,
			Branch:    names[e.BranchID],
		})
	}
	return out, nil
}

func (uc *AuditUseCase) branchNames(ctx context.Context) (map[uint]string, error) {
	branches, err := uc.repos.Branches.List(ctx)
	if err != nil {
		return nil, domain.Persistence("audit.Timeline", err)
	}
	names := make(map[uint]string, len(branches))
	for _, b := range branches {
		names[b.ID] = b.Name
	}
	return names, nil
}

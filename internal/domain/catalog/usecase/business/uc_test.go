package business

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain/catalog/entities"
	catalogerrors "github.com/Aztech-1729/sliptads/internal/domain/catalog/errors"
	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
	"github.com/Aztech-1729/sliptads/internal/domain/session/repository/memory"
	sessionbusiness "github.com/Aztech-1729/sliptads/internal/domain/session/usecase/business"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
	"github.com/Aztech-1729/sliptads/pkg/sealer"
)

type stubBuilder struct {
	catalog []sessionentities.Destination
	err     error
}

func (b *stubBuilder) Build(context.Context, int64) ([]sessionentities.Destination, error) {
	return b.catalog, b.err
}

var testCatalog = []sessionentities.Destination{
	{DisplayID: "-1001", Title: "Alpha sales", Kind: sessionentities.KindGroup, ChatID: 1},
	{DisplayID: "-1002:5", Title: "Deals (in Market)", Kind: sessionentities.KindTopic, ChatID: 2, TopicID: 5},
	{DisplayID: "-3", Title: "Bravo", Kind: sessionentities.KindGroup, ChatID: 3},
	{DisplayID: "-1002:6", Title: "Sales talk (in Market)", Kind: sessionentities.KindTopic, ChatID: 2, TopicID: 6},
}

func newCatalogUseCase(t *testing.T, b *stubBuilder) (*UseCase, *sessionbusiness.UseCase) {
	t.Helper()

	s, err := sealer.New(nil)
	require.NoError(t, err)
	sessions := sessionbusiness.NewUseCase(
		memory.NewRepository(),
		s,
		&config.DeliveryConfig{RoundDelayMin: time.Minute},
		zerolog.Nop(),
		metrics.GetDefaultMetrics(),
	)

	return NewUseCase(b, nil, sessions, nil, &config.CatalogConfig{PageSize: 2, JoinMax: 3}, zerolog.Nop()), sessions
}

// TestUseCase_Refresh tests that a refresh replaces the catalog and clears the selection
func TestUseCase_Refresh(t *testing.T) {
	b := &stubBuilder{catalog: testCatalog}
	uc, sessions := newCatalogUseCase(t, b)
	ctx := context.Background()

	_, err := sessions.Update(ctx, 1, func(s *sessionentities.Session) error {
		s.Catalog = []sessionentities.Destination{{DisplayID: "-99", Title: "Old"}}
		s.Selected = []string{"-99"}
		s.Filter = "old"
		return nil
	})
	require.NoError(t, err)

	page, err := uc.Refresh(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 4, page.Total)
	require.Equal(t, 2, page.Pages)
	require.Equal(t, 0, page.Selected)
	require.Len(t, page.Items, 2)

	s, err := sessions.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, testCatalog, s.Catalog)
	require.Empty(t, s.Selected)
	require.Empty(t, s.Filter)
}

// TestUseCase_RefreshFailureKeepsCatalog tests that a failed build leaves the stored catalog untouched
func TestUseCase_RefreshFailureKeepsCatalog(t *testing.T) {
	b := &stubBuilder{catalog: testCatalog}
	uc, sessions := newCatalogUseCase(t, b)
	ctx := context.Background()

	_, err := uc.Refresh(ctx, 1)
	require.NoError(t, err)
	_, err = uc.Toggle(ctx, 1, "-3", 0)
	require.NoError(t, err)

	b.err = catalogerrors.ErrCatalogUnavailable
	_, err = uc.Refresh(ctx, 1)
	require.ErrorIs(t, err, catalogerrors.ErrCatalogUnavailable)

	s, err := sessions.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, testCatalog, s.Catalog)
	require.Equal(t, []string{"-3"}, s.Selected)
}

// TestUseCase_Toggle tests selection toggling
func TestUseCase_Toggle(t *testing.T) {
	uc, _ := newCatalogUseCase(t, &stubBuilder{catalog: testCatalog})
	ctx := context.Background()
	_, err := uc.Refresh(ctx, 1)
	require.NoError(t, err)

	page, err := uc.Toggle(ctx, 1, "-1001", 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Selected)
	require.True(t, page.Items[0].Selected)

	page, err = uc.Toggle(ctx, 1, "-1001", 0)
	require.NoError(t, err)
	require.Equal(t, 0, page.Selected)

	_, err = uc.Toggle(ctx, 1, "-404", 0)
	require.ErrorIs(t, err, catalogerrors.ErrDestinationNotFound)
}

// TestUseCase_FilterAndBulkSelect tests that bulk operations only act on the filtered view
func TestUseCase_FilterAndBulkSelect(t *testing.T) {
	uc, sessions := newCatalogUseCase(t, &stubBuilder{catalog: testCatalog})
	ctx := context.Background()
	_, err := uc.Refresh(ctx, 1)
	require.NoError(t, err)

	page, err := uc.SetFilter(ctx, 1, "  SALES ")
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	require.Equal(t, "SALES", page.Filter)

	_, err = uc.SelectAll(ctx, 1, sessionentities.KindTopic)
	require.NoError(t, err)
	s, err := sessions.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"-1002:6"}, s.Selected)

	_, err = uc.SelectAll(ctx, 1, sessionentities.KindAll)
	require.NoError(t, err)
	s, err = sessions.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"-1002:6", "-1001"}, s.Selected)

	page, err = uc.ClearFilter(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 4, page.Total)

	_, err = uc.SelectAll(ctx, 1, sessionentities.KindGroup)
	require.NoError(t, err)
	_, err = uc.UnselectAll(ctx, 1, sessionentities.KindTopic)
	require.NoError(t, err)

	s, err = sessions.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"-1001", "-3"}, s.Selected)
}

// TestUseCase_Confirm tests that targets follow catalog order and respect the lock
func TestUseCase_Confirm(t *testing.T) {
	uc, sessions := newCatalogUseCase(t, &stubBuilder{catalog: testCatalog})
	ctx := context.Background()
	_, err := uc.Refresh(ctx, 1)
	require.NoError(t, err)

	_, err = uc.Confirm(ctx, 1)
	require.ErrorIs(t, err, catalogerrors.ErrEmptySelection)

	for _, id := range []string{"-1002:6", "-3", "-1001"} {
		_, err = uc.Toggle(ctx, 1, id, 0)
		require.NoError(t, err)
	}

	targets, err := uc.Confirm(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"-1001", "-3", "-1002:6"}, targets)

	_, err = sessions.Update(ctx, 1, func(s *sessionentities.Session) error {
		s.Ad.Locked = true
		return nil
	})
	require.NoError(t, err)

	_, err = uc.Confirm(ctx, 1)
	require.ErrorIs(t, err, sessionerrors.ErrConfigLocked)
}

// TestUseCase_RefreshWhileRunning tests that a locked configuration never opens a catalog connection
func TestUseCase_RefreshWhileRunning(t *testing.T) {
	b := &countingBuilder{stubBuilder: stubBuilder{catalog: testCatalog}}
	uc, sessions := newCatalogUseCase(t, &b.stubBuilder)
	uc.builder = b
	ctx := context.Background()

	_, err := sessions.Update(ctx, 1, func(s *sessionentities.Session) error {
		s.Ad.Locked = true
		return nil
	})
	require.NoError(t, err)

	_, err = uc.Refresh(ctx, 1)
	require.ErrorIs(t, err, sessionerrors.ErrConfigLocked)
	require.Zero(t, b.builds)
}

type countingBuilder struct {
	stubBuilder
	builds int
}

func (b *countingBuilder) Build(ctx context.Context, userID int64) ([]sessionentities.Destination, error) {
	b.builds++
	return b.stubBuilder.Build(ctx, userID)
}

// TestUseCase_List tests paging bounds
func TestUseCase_List(t *testing.T) {
	uc, _ := newCatalogUseCase(t, &stubBuilder{catalog: testCatalog})
	ctx := context.Background()
	_, err := uc.Refresh(ctx, 1)
	require.NoError(t, err)

	page, err := uc.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, "-1002:6", page.Items[1].DisplayID)

	page, err = uc.List(ctx, 1, 9)
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)

	_, err = uc.List(ctx, 1, -1)
	require.ErrorIs(t, err, catalogerrors.ErrInvalidPage)

	empty, err := uc.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Equal(t, 1, empty.Pages)
	require.Empty(t, empty.Items)
}

type stubJoiner struct {
	tokens [][]string
}

func (j *stubJoiner) Join(_ context.Context, _ int64, tokens []string) (entities.JoinReport, error) {
	j.tokens = append(j.tokens, tokens)
	report := entities.JoinReport{}
	for _, tok := range tokens {
		report.Results = append(report.Results, entities.JoinResult{Target: tok, Status: entities.JoinJoined})
	}
	return report, nil
}

// TestUseCase_Join tests input splitting, limits and the running lock
func TestUseCase_Join(t *testing.T) {
	uc, sessions := newCatalogUseCase(t, &stubBuilder{catalog: testCatalog})
	j := &stubJoiner{}
	uc.joiner = j
	ctx := context.Background()

	report, err := uc.Join(ctx, 1, "https://t.me/+AbCd, @deals |\n\n -1001234")
	require.NoError(t, err)
	require.Equal(t, 3, report.Count(entities.JoinJoined))
	require.Equal(t, [][]string{{"https://t.me/+AbCd", "@deals", "-1001234"}}, j.tokens)

	_, err = uc.Join(ctx, 1, " , | ")
	require.ErrorIs(t, err, catalogerrors.ErrNoJoinTargets)

	_, err = uc.Join(ctx, 1, "a1,b22,c333,d444")
	require.ErrorIs(t, err, catalogerrors.ErrTooManyTargets)

	_, err = uc.Join(ctx, 0, "@deals")
	require.ErrorIs(t, err, sessionerrors.ErrInvalidUserID)

	_, err = sessions.Update(ctx, 1, func(s *sessionentities.Session) error {
		s.Ad.Locked = true
		return nil
	})
	require.NoError(t, err)
	_, err = uc.Join(ctx, 1, "@deals")
	require.ErrorIs(t, err, sessionerrors.ErrConfigLocked)
	require.Len(t, j.tokens, 1)
}

// TestUseCase_JoinAccess tests that joining needs owner or premium access when gated
func TestUseCase_JoinAccess(t *testing.T) {
	uc, sessions := newCatalogUseCase(t, &stubBuilder{})
	j := &stubJoiner{}
	uc.joiner = j
	uc.access = sessionbusiness.NewAccessGate(&config.AccessConfig{Gated: true, OwnerIDs: []int64{7}})
	ctx := context.Background()

	_, err := uc.Join(ctx, 1, "@deals")
	require.ErrorIs(t, err, sessionerrors.ErrPremiumRequired)
	require.Empty(t, j.tokens)

	_, err = uc.Join(ctx, 7, "@deals")
	require.NoError(t, err)

	_, err = sessions.ExtendPremium(ctx, 1, 24*time.Hour)
	require.NoError(t, err)
	_, err = uc.Join(ctx, 1, "@deals")
	require.NoError(t, err)
	require.Len(t, j.tokens, 2)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"stormbringer/internal/campaign/dto"
	"stormbringer/internal/campaign/models"
	"stormbringer/pkg/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// flakyStore serves writes from memory and lets tests script read failures
type flakyStore struct {
	*docstore.MemoryStore
	mock.Mock
	failGet   bool
	failQuery bool
	// beforeRemove runs ahead of each ArrayRemove, standing in for a write
	// that lands between a service's read and its own write
	beforeRemove func()
}

func (s *flakyStore) ArrayRemove(ctx context.Context, collection, id, field string, value any, extra map[string]any) error {
	if s.beforeRemove != nil {
		hook := s.beforeRemove
		s.beforeRemove = nil
		hook()
	}
	return s.MemoryStore.ArrayRemove(ctx, collection, id, field, value, extra)
}

func (s *flakyStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	if s.failGet {
		args := s.Called(collection, id)
		return nil, args.Error(1)
	}
	return s.MemoryStore.Get(ctx, collection, id)
}

func (s *flakyStore) Query(ctx context.Context, collection string, filters ...docstore.Where) ([]docstore.Document, error) {
	if s.failQuery {
		args := s.Called(collection)
		return nil, args.Error(1)
	}
	return s.MemoryStore.Query(ctx, collection, filters...)
}

type fixture struct {
	store  *flakyStore
	caches *MemoryCacheProvider
	svc    *Service
	clock  time.Time
}

func newFixture() *fixture {
	f := &fixture{
		store:  &flakyStore{MemoryStore: docstore.NewMemoryStore()},
		caches: NewMemoryCacheProvider(),
		clock:  time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(NewRepository(f.store), f.caches)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) tick() {
	f.clock = f.clock.Add(time.Minute)
}

func sessionCtx(id string) context.Context {
	return WithSession(context.Background(), id)
}

func TestCreateCampaign_Roster(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	c, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "La Fortezza", Description: "Young Kingdoms"}, "dm-1")
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, []string{"dm-1"}, c.Players)
	assert.Equal(t, "dm-1", c.DMID)
	assert.Equal(t, models.StatusActive, c.Status)
	assert.Empty(t, c.Chats)
	assert.Regexp(t, `^/campaigns/join/[A-Za-z0-9_-]{21}$`, c.AccessLink)

	stored, err := f.svc.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, []string{"dm-1"}, stored.Players)
	assert.Equal(t, "dm-1", stored.DMID)

	cached, ok, err := f.caches.ForSession("s1").Get(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, c.Name, cached.Name)
}

func TestCreateCampaign_RequiresName(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateCampaign(sessionCtx("s1"), dto.CreateCampaignRequest{}, "dm-1")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateCampaign_UniqueAccessLinks(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	links := map[string]bool{}
	for i := 0; i < 20; i++ {
		c, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Campagna"}, "dm-1")
		require.NoError(t, err)
		assert.False(t, links[c.AccessLink])
		links[c.AccessLink] = true
	}
}

func TestAddPlayerToCampaign_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	c, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Imrryr"}, "dm-1")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		f.tick()
		joined, err := f.svc.AddPlayerToCampaign(ctx, c.ID, "player-1", "char-9")
		require.NoError(t, err)
		assert.Equal(t, []string{"dm-1", "player-1"}, joined.Players)
	}

	stored, err := f.svc.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	count := 0
	for _, p := range stored.Players {
		if p == "player-1" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, "char-9", stored.PlayerCharacters["player-1"])
	assert.True(t, stored.UpdatedAt.After(c.UpdatedAt))
}

func TestAddPlayerToCampaign_Missing(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AddPlayerToCampaign(sessionCtx("s1"), "nope", "player-1", "char-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCampaign_FallsBackToCacheOnReadFailure(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	c, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Tanelorn"}, "dm-1")
	require.NoError(t, err)

	f.store.failGet = true
	f.store.On("Get", models.CampaignsCollection, mock.Anything).Return(nil, errors.New("store unavailable"))

	got, err := f.svc.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Tanelorn", got.Name)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))

	_, err = f.svc.GetCampaign(ctx, "uncached")
	assert.EqualError(t, err, "failed to get campaign uncached: store unavailable")

	_, err = f.svc.GetCampaign(sessionCtx("other"), c.ID)
	assert.Error(t, err, "caches are per session")
	f.store.AssertExpectations(t)
}

func TestGetCampaign_NotYetVisible(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	pending := &models.Campaign{ID: "pending", Name: "Pending", DMID: "dm-1", Players: []string{"dm-1"}, UpdatedAt: f.clock}
	require.NoError(t, f.caches.ForSession("s1").UpsertFront(ctx, pending))

	got, err := f.svc.GetCampaign(ctx, "pending")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Pending", got.Name)

	missing, err := f.svc.GetCampaign(ctx, "nothing")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetCampaign_IntegrityFailure(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	require.NoError(t, f.store.Set(ctx, models.CampaignsCollection, "broken", map[string]any{
		"name":    "No DM",
		"players": []any{"p1"},
	}))
	require.NoError(t, f.caches.ForSession("s1").UpsertFront(ctx, &models.Campaign{ID: "broken", Name: "Cached", DMID: "dm", Players: []string{"dm"}}))

	_, err := f.svc.GetCampaign(ctx, "broken")
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGetUserCampaigns(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	first, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "First"}, "dm-1")
	require.NoError(t, err)
	f.tick()
	_, err = f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Someone else's"}, "dm-2")
	require.NoError(t, err)
	f.tick()
	second, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Second"}, "dm-2")
	require.NoError(t, err)
	f.tick()
	_, err = f.svc.AddPlayerToCampaign(ctx, second.ID, "dm-1", "")
	require.NoError(t, err)

	f.tick()
	unseen := &models.Campaign{ID: "fresh", Name: "Fresh", DMID: "dm-1", Players: []string{"dm-1"}, UpdatedAt: f.clock}
	require.NoError(t, f.caches.ForSession("s1").UpsertFront(ctx, unseen))

	campaigns, err := f.svc.GetUserCampaigns(ctx, "dm-1")
	require.NoError(t, err)

	names := make([]string, len(campaigns))
	for i, c := range campaigns {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Fresh", "Second", "First"}, names)
	assert.Equal(t, first.ID, campaigns[2].ID)
}

func TestGetUserCampaigns_ReadFailureServesCache(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	_, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Mine"}, "dm-1")
	require.NoError(t, err)
	_, err = f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Theirs"}, "dm-2")
	require.NoError(t, err)

	f.store.failQuery = true
	f.store.On("Query", models.CampaignsCollection).Return(nil, errors.New("offline"))

	campaigns, err := f.svc.GetUserCampaigns(ctx, "dm-1")
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "Mine", campaigns[0].Name)
}

func TestUpdateCampaign(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	c, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Old"}, "dm-1")
	require.NoError(t, err)

	f.tick()
	name := "New"
	status := "paused"
	next := time.Date(2026, 3, 2, 20, 0, 0, 0, time.FixedZone("CET", 3600))
	patch, err := f.svc.UpdateCampaign(ctx, c.ID, dto.UpdateCampaignRequest{Name: &name, Status: &status, NextSessionDate: &next})
	require.NoError(t, err)

	assert.Equal(t, f.clock, patch.UpdatedAt)
	require.NotNil(t, patch.NextSessionDate)
	assert.Equal(t, time.UTC, patch.NextSessionDate.Location())
	assert.Nil(t, patch.Description)

	stored, err := f.svc.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", stored.Name)
	assert.Equal(t, models.StatusPaused, stored.Status)
	require.NotNil(t, stored.NextSessionDate)
	assert.True(t, next.Equal(*stored.NextSessionDate))

	cached, ok, err := f.caches.ForSession("s1").Get(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "New", cached.Name)

	f.tick()
	_, err = f.svc.UpdateCampaign(ctx, c.ID, dto.UpdateCampaignRequest{ClearNextSessionDate: true})
	require.NoError(t, err)
	stored, err = f.svc.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.NextSessionDate)
	assert.Equal(t, "New", stored.Name)
}

func TestUpdateCampaign_Invalid(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	bad := "archived"
	_, err := f.svc.UpdateCampaign(ctx, "any", dto.UpdateCampaignRequest{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	next := f.clock
	_, err = f.svc.UpdateCampaign(ctx, "any", dto.UpdateCampaignRequest{NextSessionDate: &next, ClearNextSessionDate: true})
	assert.ErrorIs(t, err, ErrInvalidInput)

	name := "Ghost"
	_, err = f.svc.UpdateCampaign(ctx, "ghost", dto.UpdateCampaignRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatus_AllTransitions(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	c, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Cycle"}, "dm-1")
	require.NoError(t, err)

	for _, status := range []models.Status{models.StatusCompleted, models.StatusPaused, models.StatusActive, models.StatusCompleted, models.StatusActive} {
		_, err := f.svc.SetStatus(ctx, c.ID, status)
		require.NoError(t, err)
		stored, err := f.svc.GetCampaign(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, status, stored.Status)
	}
}

func TestDeleteCampaign(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	c, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Gone"}, "dm-1")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteCampaign(ctx, c.ID))

	got, err := f.svc.GetCampaign(ctx, c.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestAddChatMessage(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	c, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Chatty"}, "dm-1")
	require.NoError(t, err)

	f.tick()
	first, err := f.svc.AddChatMessage(ctx, c.ID, "dm-1", "Elric", "Benvenuti")
	require.NoError(t, err)
	f.tick()
	second, err := f.svc.AddChatMessage(ctx, c.ID, "dm-1", "Elric", "Si parte")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	chats, err := f.svc.ListChats(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, first.ID, chats[0].ID)
	assert.Equal(t, "Si parte", chats[1].Text)
	assert.True(t, chats[1].Timestamp.Equal(f.clock))

	stored, err := f.svc.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.Equal(f.clock))

	_, err = f.svc.AddChatMessage(ctx, c.ID, "dm-1", "Elric", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.AddChatMessage(ctx, "missing", "dm-1", "Elric", "ciao")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCampaignByAccessLink(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	c, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Invite"}, "dm-1")
	require.NoError(t, err)
	token := c.AccessLink[len(models.AccessLinkPrefix):]

	byToken, err := f.svc.GetCampaignByAccessLink(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, byToken)
	assert.Equal(t, c.ID, byToken.ID)

	byLink, err := f.svc.GetCampaignByAccessLink(ctx, c.AccessLink)
	require.NoError(t, err)
	require.NotNil(t, byLink)
	assert.Equal(t, c.ID, byLink.ID)

	none, err := f.svc.GetCampaignByAccessLink(ctx, "unknown")
	assert.NoError(t, err)
	assert.Nil(t, none)
}

func TestRemovePlayerFromCampaign(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	c, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Roster"}, "dm-1")
	require.NoError(t, err)
	_, err = f.svc.AddPlayerToCampaign(ctx, c.ID, "player-1", "char-1")
	require.NoError(t, err)
	_, err = f.svc.AddPlayerToCampaign(ctx, c.ID, "player-2", "char-2")
	require.NoError(t, err)

	updated, err := f.svc.RemovePlayerFromCampaign(ctx, c.ID, "player-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"dm-1", "player-2"}, updated.Players)

	stored, err := f.svc.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"dm-1", "player-2"}, stored.Players)
	assert.Equal(t, map[string]string{"player-2": "char-2"}, stored.PlayerCharacters)

	_, err = f.svc.RemovePlayerFromCampaign(ctx, c.ID, "dm-1")
	assert.ErrorIs(t, err, ErrDMRemoval)
}

func TestRemovePlayerFromCampaign_KeepsConcurrentJoin(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	c, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Roster"}, "dm-1")
	require.NoError(t, err)
	_, err = f.svc.AddPlayerToCampaign(ctx, c.ID, "alice", "char-a")
	require.NoError(t, err)

	f.store.beforeRemove = func() {
		_, err := f.svc.AddPlayerToCampaign(sessionCtx("s2"), c.ID, "bob", "char-b")
		require.NoError(t, err)
	}
	_, err = f.svc.RemovePlayerFromCampaign(ctx, c.ID, "alice")
	require.NoError(t, err)

	doc, err := f.store.MemoryStore.Get(context.Background(), models.CampaignsCollection, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"dm-1", "bob"}, docstore.StringSlice(doc.Fields, "players"))
	assert.Equal(t, map[string]string{"bob": "char-b"}, docstore.StringMap(doc.Fields, "playerCharacters"))
}

func TestAddFile(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	c, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Maps"}, "dm-1")
	require.NoError(t, err)

	require.NoError(t, f.svc.AddFile(ctx, c.ID, "https://example.com/map.png"))
	require.NoError(t, f.svc.AddFile(ctx, c.ID, "https://example.com/map.png"))
	assert.ErrorIs(t, f.svc.AddFile(ctx, c.ID, "not a url"), ErrInvalidInput)

	stored, err := f.svc.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/map.png"}, stored.Files)
}

func TestClearSessionCache(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	_, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Cached"}, "dm-1")
	require.NoError(t, err)
	require.NoError(t, f.svc.ClearSessionCache(ctx))

	cached, err := f.caches.ForSession("s1").List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestSendReminders(t *testing.T) {
	f := newFixture()
	ctx := sessionCtx("s1")

	soon, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Soon"}, "dm-1")
	require.NoError(t, err)
	_, err = f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Unscheduled"}, "dm-1")
	require.NoError(t, err)
	later, err := f.svc.CreateCampaign(ctx, dto.CreateCampaignRequest{Name: "Later"}, "dm-1")
	require.NoError(t, err)

	in3h := f.clock.Add(3 * time.Hour)
	in3d := f.clock.Add(72 * time.Hour)
	_, err = f.svc.ScheduleSession(ctx, soon.ID, &in3h)
	require.NoError(t, err)
	_, err = f.svc.ScheduleSession(ctx, later.ID, &in3d)
	require.NoError(t, err)

	sent, err := f.svc.SendReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = f.svc.SendReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent, "a session is announced once")

	in2h := f.clock.Add(2 * time.Hour)
	_, err = f.svc.ScheduleSession(ctx, soon.ID, &in2h)
	require.NoError(t, err)
	sent, err = f.svc.SendReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent, "rescheduling announces again")
}

func TestCacheRecord_RoundTripsTimestamps(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.UTC)
	next := created.Add(48 * time.Hour)
	c := &models.Campaign{
		ID:        "c1",
		Name:      "Precise",
		DMID:      "dm",
		Players:   []string{"dm", "p"},
		Status:    models.StatusCompleted,
		CreatedAt: created,
		UpdatedAt: created,
		Chats: []models.ChatMessage{
			{ID: "m1", UserID: "dm", UserName: "DM", Text: "hi", Timestamp: created},
		},
		NextSessionDate:  &next,
		PlayerCharacters: map[string]string{"p": "char"},
	}

	record := cacheRecord(c)
	assert.Equal(t, map[string]any{"seconds": created.Unix(), "nanoseconds": int32(123456789)}, record["createdAt"])

	raw, err := json.Marshal(record)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	back, err := fromCacheRecord(decoded)
	require.NoError(t, err)
	assert.Equal(t, "c1", back.ID)
	assert.True(t, created.Equal(back.CreatedAt))
	require.NotNil(t, back.NextSessionDate)
	assert.True(t, next.Equal(*back.NextSessionDate))
	require.Len(t, back.Chats, 1)
	assert.True(t, created.Equal(back.Chats[0].Timestamp))
	assert.Equal(t, models.StatusCompleted, back.Status)
	assert.Equal(t, map[string]string{"p": "char"}, back.PlayerCharacters)
}

func TestDecodeCampaign_Integrity(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"missing name", map[string]any{"dmId": "dm", "players": []any{"dm"}}},
		{"missing dm", map[string]any{"name": "x", "players": []any{"dm"}}},
		{"missing players", map[string]any{"name": "x", "dmId": "dm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeCampaign("id", tt.fields)
			assert.ErrorIs(t, err, ErrIntegrity)
		})
	}
}

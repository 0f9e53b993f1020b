package principals

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/dmitrijs2005/skillhub/internal/logging"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, m *repomanager.MemoryRepositoryManager, ps ...*models.Principal) {
	t.Helper()
	for _, p := range ps {
		_, err := repomanager.Principals(m, nil, p.Ref.Kind()).Create(context.Background(), p)
		require.NoError(t, err)
	}
}

func newResolver(t *testing.T) (*Resolver, *repomanager.MemoryRepositoryManager, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	m := repomanager.NewMemoryRepositoryManager()
	return NewResolver(m, logging.NewJSONLogger(&buf, slog.LevelDebug)), m, &buf
}

func TestResolveByIdentifier_UsernameAndEmail(t *testing.T) {
	r, m, _ := newResolver(t)
	seed(t, m,
		&models.Principal{Ref: models.PrimaryRef("p1"), Username: "alice", Email: "alice@example.com", Active: true},
		&models.Principal{Ref: models.WorkerRef("w1"), Username: "bob", Email: "bob@example.com", Active: true, OwnerID: "p1"},
	)
	ctx := context.Background()

	p, err := r.ResolveByIdentifier(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.PrimaryRef("p1"), p.Ref)

	p, err = r.ResolveByIdentifier(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.WorkerRef("w1"), p.Ref)

	// an email is never matched against usernames
	_, err = r.ResolveByIdentifier(ctx, "bob@")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = r.ResolveByIdentifier(ctx, "  ")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestResolveByIdentifier_PrimaryWinsAmbiguity(t *testing.T) {
	r, m, logs := newResolver(t)
	seed(t, m,
		&models.Principal{Ref: models.PrimaryRef("p1"), Username: "sam", Email: "sam@org.com"},
		&models.Principal{Ref: models.WorkerRef("w1"), Username: "sam", Email: "sam@team.com"},
	)

	p, err := r.ResolveByIdentifier(context.Background(), "sam")
	require.NoError(t, err)
	assert.Equal(t, models.KindPrimary, p.Ref.Kind())
	assert.Contains(t, logs.String(), "identifier matches both account kinds")
}

func TestResolveByRef(t *testing.T) {
	r, m, _ := newResolver(t)
	seed(t, m,
		&models.Principal{Ref: models.PrimaryRef("x"), Username: "p", Email: "p@x", Active: true},
		&models.Principal{Ref: models.WorkerRef("x"), Username: "w", Email: "w@x", Active: false},
	)
	ctx := context.Background()

	p, err := r.ResolveByRef(ctx, models.WorkerRef("x"))
	require.NoError(t, err)
	assert.Equal(t, "w", p.Username)

	_, err = r.ResolveByRef(ctx, models.PrimaryRef("missing"))
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = r.ResolveByRef(ctx, models.PrincipalRef{})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestResolveActiveByRef(t *testing.T) {
	r, m, _ := newResolver(t)
	seed(t, m,
		&models.Principal{Ref: models.PrimaryRef("on"), Username: "on", Email: "on@x", Active: true},
		&models.Principal{Ref: models.PrimaryRef("off"), Username: "off", Email: "off@x", Active: false},
	)
	ctx := context.Background()

	p, err := r.ResolveActiveByRef(ctx, models.PrimaryRef("on"))
	require.NoError(t, err)
	assert.True(t, p.Active)

	p, err = r.ResolveActiveByRef(ctx, models.PrimaryRef("off"))
	assert.ErrorIs(t, err, common.ErrAccountInactive)
	assert.Nil(t, p)
}

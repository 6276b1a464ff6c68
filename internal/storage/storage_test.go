package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/rawloader/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id := uuid.New()

	got, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseID("not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestPgUUIDRoundTrip(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, fromPgUUID(toPgUUID(id)))

	assert.False(t, toPgUUID(uuid.Nil).Valid)
	assert.Equal(t, uuid.Nil, fromPgUUID(toPgUUID(uuid.Nil)))
}

func TestEncodeErrors(t *testing.T) {
	data, err := encodeErrors(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	row := 3
	data, err = encodeErrors([]core.ValidationError{{Row: &row, Field: "Premium", Message: core.MsgRequiredMissing}})
	require.NoError(t, err)

	back, err := decodeErrors(data)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, 3, *back[0].Row)
	assert.Equal(t, "Premium", back[0].Field)

	empty, err := decodeErrors(nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCopyRows(t *testing.T) {
	id := uuid.New()
	records := []core.CanonicalRecord{
		{{Key: "policyId", Value: "P1"}, {Key: "premium", Value: 10.5}},
		{{Key: "policyId", Value: "P2"}, {Key: "premium", Value: nil}},
	}

	rows, err := copyRows(id, 1000, records)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, toPgUUID(id), rows[0][0])
	assert.Equal(t, int32(1000), rows[0][1])
	assert.Equal(t, int32(1001), rows[1][1])
	assert.Equal(t, `{"policyId":"P2","premium":null}`, string(rows[1][2].([]byte)))
}

func TestMetadataJSON(t *testing.T) {
	m := Metadata{
		ID:        uuid.MustParse("0b7c2b7e-6a43-4a6b-9a52-5b0f7c4ef001"),
		FileName:  "policies.xlsx",
		PartnerID: 1,
		ConfigID:  "MotorPolicy-v1",
		Status:    StatusValidated,
		Errors:    []core.ValidationError{},
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "VALIDATED", fields["validationStatus"])
	assert.Equal(t, []any{}, fields["errorMessages"])
	assert.Contains(t, fields, "uploadDate")
}

// testStore connects to TEST_DATABASE_URL and migrates it. Tests using it
// are skipped when the variable is unset.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping live test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool, 2)
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations, migrationDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, migrationDir+"/00001_init.sql", files[0])

	for _, name := range files {
		data, err := fs.ReadFile(migrations, name)
		require.NoError(t, err)
		sql := string(data)
		assert.True(t, strings.HasPrefix(sql, "-- +goose Up"), "%s must start with an Up section", name)
		assert.Contains(t, sql, "-- +goose Down", "%s needs a Down section", name)
	}
}

func TestStore_MigrateIsRepeatable(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestStore_Lifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	fileID, err := s.StoreFile(ctx, "policies.csv", "text/csv", []byte("Policy No\nP1\n"))
	require.NoError(t, err)

	f, err := s.OpenFile(ctx, fileID)
	require.NoError(t, err)
	assert.Equal(t, "policies.csv", f.Name)
	assert.Equal(t, []byte("Policy No\nP1\n"), f.Data)

	m := &Metadata{FileID: fileID, FileName: f.Name, PartnerID: 1, ConfigID: "cfg", Status: StatusValidated, RowCount: 3}
	require.NoError(t, s.CreateMetadata(ctx, m))
	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.False(t, m.UploadedAt.IsZero())

	records := []core.CanonicalRecord{
		{{Key: "b", Value: "1"}, {Key: "a", Value: 1.5}},
		{{Key: "b", Value: "2"}, {Key: "a", Value: nil}},
		{{Key: "b", Value: "3"}, {Key: "a", Value: 3.0}},
	}
	n, err := s.SaveTransformed(ctx, m.ID, records)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// A second transform replaces the first.
	n, err = s.SaveTransformed(ctx, m.ID, records[:2])
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.ListRecords(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Row[0].Key, "key order must survive storage")
	assert.Equal(t, 1, got[1].Ordinal)

	meta, err := s.GetMetadata(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusTransformed, meta.Status)
	assert.Equal(t, 2, meta.RowCount)

	purged, err := s.Purge(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, int64(1))

	_, err = s.GetMetadata(ctx, m.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "metadata should cascade with its file: %v", err)
}

func TestStore_NotFound(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.OpenFile(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetMetadata(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.UpdateStatus(ctx, uuid.New(), StatusFailed, nil, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

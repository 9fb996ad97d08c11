package repo

import (
	"testing"
	"time"

	dmn "github.com/beka-birhanu/maze-solver/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestRunDocument(t *testing.T) {
	run := &dmn.Run{
		ID:          uuid.New(),
		SessionID:   uuid.New(),
		Algorithm:   "dfs",
		Rows:        10,
		Cols:        12,
		Walls:       31,
		TraceLength: 57,
		PathLength:  23,
		Found:       true,
		CreatedAt:   time.Date(2025, 2, 8, 10, 0, 0, 0, time.UTC),
	}

	t.Run("stored fields", func(t *testing.T) {
		raw, err := bson.Marshal(toDocument(run))
		require.NoError(t, err)

		var m bson.M
		require.NoError(t, bson.Unmarshal(raw, &m))
		assert.Equal(t, run.ID.String(), m["_id"])
		assert.Equal(t, run.SessionID.String(), m["sessionId"])
		assert.Equal(t, "dfs", m["algorithm"])
		assert.Contains(t, m, "traceLength")
		assert.Contains(t, m, "createdAt")
	})

	t.Run("decodes back into a run", func(t *testing.T) {
		raw, err := bson.Marshal(toDocument(run))
		require.NoError(t, err)

		var doc runDocument
		require.NoError(t, bson.Unmarshal(raw, &doc))
		got, err := doc.toRun()
		require.NoError(t, err)
		assert.Equal(t, run, got)
	})

	t.Run("bad id", func(t *testing.T) {
		doc := toDocument(run)
		doc.SessionID = "not-a-uuid"
		_, err := doc.toRun()
		assert.Error(t, err)
	})
}

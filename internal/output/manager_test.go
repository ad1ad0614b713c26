package output

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkA struct {
	writes   []any
	writeErr error
	closeErr error
}

func (s *sinkA) Write(v any) error {
	s.writes = append(s.writes, v)
	return s.writeErr
}

func (s *sinkA) Close() error {
	return s.closeErr
}

type sinkB struct {
	sinkA
}

func TestManager(t *testing.T) {
	t.Run("writes to all sinks", func(t *testing.T) {
		a := &sinkA{}
		b := &sinkB{}

		mgr := NewManager()
		require.NoError(t, mgr.AddSink(a))
		require.NoError(t, mgr.AddSink(b))
		assert.Equal(t, 2, mgr.Len())

		require.NoError(t, mgr.Write(pass("A")))
		require.NoError(t, mgr.Write(Event{Type: EventBuildFinished}))
		require.NoError(t, mgr.Close())

		assert.Len(t, a.writes, 2)
		assert.Len(t, b.writes, 2)
	})

	t.Run("AddSink rejects nil", func(t *testing.T) {
		assert.Error(t, NewManager().AddSink(nil))
	})

	t.Run("nil manager", func(t *testing.T) {
		var mgr *Manager
		assert.Zero(t, mgr.Len())
		assert.Error(t, mgr.Write("v"))
		assert.Error(t, mgr.Close())
	})

	t.Run("Write aggregates sink errors", func(t *testing.T) {
		mgr := NewManager()
		require.NoError(t, mgr.AddSink(&sinkA{writeErr: errors.New("boom-a")}))
		require.NoError(t, mgr.AddSink(&sinkB{sinkA{writeErr: errors.New("boom-b")}}))

		err := mgr.Write("v")
		require.Error(t, err)
		for _, want := range []string{"errors writing to sinks", "boom-a", "boom-b", "sinkA", "sinkB"} {
			assert.Contains(t, err.Error(), want)
		}
	})

	t.Run("Close aggregates sink errors", func(t *testing.T) {
		mgr := NewManager()
		require.NoError(t, mgr.AddSink(&sinkA{closeErr: errors.New("close-a")}))
		require.NoError(t, mgr.AddSink(&sinkB{sinkA{closeErr: errors.New("close-b")}}))

		err := mgr.Close()
		require.Error(t, err)
		for _, want := range []string{"errors closing sinks", "close-a", "close-b", "sinkA", "sinkB"} {
			assert.Contains(t, err.Error(), want)
		}
	})
}

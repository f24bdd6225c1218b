package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrUnknownSession: a non-first chunk arrived for a fileId the server has
// no open session for (expired, reaped, or never started).
var ErrUnknownSession = errors.New("unknown upload session")

// ErrChunkOutOfOrder: chunks must arrive with strictly increasing index.
var ErrChunkOutOfOrder = errors.New("chunk out of order")

type chunkSession struct {
	file      *os.File
	fileName  string
	nextIndex int
	total     int
	touchedAt time.Time
}

// ChunkManager reassembles large uploads the admin panel splits into ordered
// parts. Sessions are in-process only; a restart drops them and the client
// starts over from index 0.
type ChunkManager struct {
	mu       sync.Mutex
	tempDir  string
	sessions map[string]*chunkSession
}

func NewChunkManager(tempDir string) *ChunkManager {
	return &ChunkManager{tempDir: tempDir, sessions: make(map[string]*chunkSession)}
}

func (m *ChunkManager) partPath(fileID string) string {
	return filepath.Join(m.tempDir, safeName(fileID)+".part")
}

// Append writes one chunk. Index 0 opens (or restarts) the session; the
// last index closes it and returns the assembled part file path, which the
// caller owns from that point.
func (m *ChunkManager) Append(fileID, fileName string, index, total int, r io.Reader) (partPath string, completed bool, err error) {
	if fileID == "" || total <= 0 || index < 0 || index >= total {
		return "", false, fmt.Errorf("invalid chunk coordinates index=%d total=%d", index, total)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[fileID]
	if index == 0 {
		// A retry from the top replaces whatever partial state existed.
		if ok {
			m.discardLocked(fileID, sess)
		}
		if err := os.MkdirAll(m.tempDir, 0o755); err != nil {
			return "", false, err
		}
		f, err := os.Create(m.partPath(fileID))
		if err != nil {
			return "", false, err
		}
		sess = &chunkSession{file: f, fileName: fileName, total: total}
		m.sessions[fileID] = sess
	} else {
		if !ok {
			return "", false, ErrUnknownSession
		}
		if index != sess.nextIndex {
			m.discardLocked(fileID, sess)
			return "", false, fmt.Errorf("%w: got %d, want %d", ErrChunkOutOfOrder, index, sess.nextIndex)
		}
		if total != sess.total {
			m.discardLocked(fileID, sess)
			return "", false, fmt.Errorf("chunk total changed mid-session: %d then %d", sess.total, total)
		}
	}

	if _, err := io.Copy(sess.file, r); err != nil {
		m.discardLocked(fileID, sess)
		return "", false, err
	}
	sess.nextIndex = index + 1
	sess.touchedAt = time.Now()

	if sess.nextIndex < sess.total {
		return "", false, nil
	}

	path := sess.file.Name()
	if err := sess.file.Close(); err != nil {
		os.Remove(path)
		delete(m.sessions, fileID)
		return "", false, err
	}
	delete(m.sessions, fileID)
	return path, true, nil
}

func (m *ChunkManager) discardLocked(fileID string, sess *chunkSession) {
	sess.file.Close()
	os.Remove(sess.file.Name())
	delete(m.sessions, fileID)
}

// Open reports how many sessions are currently in flight.
func (m *ChunkManager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ReapStale drops sessions idle longer than ttl and deletes their part
// files. Returns how many were reaped.
func (m *ChunkManager) ReapStale(ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-ttl)
	reaped := 0
	for id, sess := range m.sessions {
		if sess.touchedAt.Before(cutoff) {
			m.discardLocked(id, sess)
			reaped++
		}
	}
	return reaped
}

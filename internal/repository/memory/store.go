// Package memory is a mutex-guarded implementation of the repositories, used
// when no DATABASE_URL is configured and by tests. One Store backs every
// repository so membership changes update both collections in a single
// critical section.
package memory

import (
	"sync"
	"time"

	"cv-tracker-backend/internal/domain"
)

type Store struct {
	mu          sync.RWMutex
	curriculums map[string]*domain.Curriculum
	listas      map[string]*domain.Lista
	users       map[string]*domain.User
	// insertion sequence, breaks created_at ties
	seq   int64
	order map[string]int64
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		curriculums: make(map[string]*domain.Curriculum),
		listas:      make(map[string]*domain.Lista),
		users:       make(map[string]*domain.User),
		order:       make(map[string]int64),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) nextSeq(id string) {
	s.seq++
	s.order[id] = s.seq
}

func cloneCurriculum(c *domain.Curriculum) *domain.Curriculum {
	out := *c
	out.Idiomas = append([]string{}, c.Idiomas...)
	out.Listas = append([]string{}, c.Listas...)
	return &out
}

func cloneLista(l *domain.Lista) *domain.Lista {
	out := *l
	if l.FechaLimite != nil {
		t := *l.FechaLimite
		out.FechaLimite = &t
	}
	out.Curriculums = append([]string{}, l.Curriculums...)
	return &out
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

package stats

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GetStatUnregistered(t *testing.T) {
	m := NewManager()
	id := uuid.New()

	assert.Equal(t, StatHealth.Default(), m.GetStat(id, StatHealth))
	assert.Equal(t, StatCritDamage.Default(), m.GetStat(id, StatCritDamage))
	assert.False(t, m.Has(id), "GetStat must not register the entity")
}

func TestManager_GetOrCreate(t *testing.T) {
	m := NewManager()
	id := uuid.New()

	a := m.GetOrCreate(id)
	b := m.GetOrCreate(id)
	assert.Same(t, a, b)
	assert.Equal(t, 1, m.Count())

	_, ok := m.Get(uuid.New())
	assert.False(t, ok)

	removed, ok := m.Remove(id)
	require.True(t, ok)
	assert.Same(t, a, removed)
	assert.Equal(t, 0, m.Count())

	_, ok = m.Remove(id)
	assert.False(t, ok)
}

func TestManager_RegisterReplaces(t *testing.T) {
	m := NewManager()
	id := uuid.New()
	m.GetOrCreate(id)

	s := NewEntityStats()
	s.SetBase(StatHealth, 500)
	m.Register(id, s)
	m.Register(id, nil)

	assert.Equal(t, float32(500), m.GetStat(id, StatHealth))
}

func TestManager_BulkOperations(t *testing.T) {
	m := NewManager()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		m.GetOrCreate(id)
	}

	m.ApplyToAll(MultiplyTotal("event:double_xp", StatXPBonus, 2))
	for _, id := range ids {
		assert.Equal(t, float32(2), m.GetStat(id, StatXPBonus))
	}

	m.AddModifier(ids[0], Add("item:ring", StatXPBonus, 1))
	assert.Equal(t, 3, m.RemoveFromAll("event:double_xp"))
	assert.Equal(t, float32(2), m.GetStat(ids[0], StatXPBonus))
	assert.Equal(t, float32(1), m.GetStat(ids[1], StatXPBonus))

	m.Clear()
	assert.Equal(t, 0, m.Count())
}

func TestManager_ChangeListener(t *testing.T) {
	m := NewManager()
	id := uuid.New()

	var got ChangeEvent
	m.OnStatChange(StatHealth, func(e ChangeEvent) { got = e })
	m.NotifyChange(id, StatHealth, 100, 130)
	m.NotifyChange(id, StatMana, 1, 2)

	assert.Equal(t, id, got.EntityID)
	assert.Equal(t, StatHealth, got.Stat)
	assert.Equal(t, float32(30), got.Delta())
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager()
	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := uuid.New()
				s := m.GetOrCreate(id)
				s.AddModifier(Add("race:orc", StatHealth, 10))
				_ = s.Get(StatHealth)
				if i%2 == 0 {
					m.Remove(id)
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			m.ApplyToAll(Add("global", StatLuck, 1))
			m.RemoveFromAll("global")
		}
	}()
	wg.Wait()

	assert.Equal(t, workers*perWorker/2, m.Count())
}

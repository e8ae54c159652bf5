package ecs

const (
	minEntityCapacity = 1024
	// maxEntityIndex is the largest index that still differs from Null.
	maxEntityIndex = IndexMask - 1
)

// entityManager owns entity identities: the generation recorded for every
// index, the set of alive handles and the queue of retired indices.
type entityManager struct {
	generations []uint32
	alive       []Entity
	alivePos    []uint32 // position of each alive index inside alive
	free        []uint32 // FIFO queue of retired indices, read from freeHead
	freeHead    int
	nextIndex   uint32
}

func newEntityManager(capacity int) entityManager {
	capacity = max(capacity, minEntityCapacity)
	return entityManager{
		generations: make([]uint32, 0, capacity),
		alive:       make([]Entity, 0, capacity),
		alivePos:    make([]uint32, 0, capacity),
	}
}

// create returns a fresh valid handle. Retired indices are reused oldest first.
func (em *entityManager) create() Entity {
	var index uint32
	if em.freeHead < len(em.free) {
		index = em.free[em.freeHead]
		em.freeHead++
		em.compactFree()
	} else {
		index = em.nextIndex
		if index > maxEntityIndex {
			panic("ecs: entity index space exhausted")
		}
		em.nextIndex++
		em.grow(index)
	}

	e := NewEntity(index, em.generations[index])
	em.alivePos[index] = uint32(len(em.alive))
	em.alive = append(em.alive, e)
	return e
}

func (em *entityManager) grow(index uint32) {
	if int(index) < len(em.generations) {
		return
	}
	size := max(int(index)+1, len(em.generations)*2)
	if size > cap(em.generations) {
		generations := make([]uint32, len(em.generations), size)
		copy(generations, em.generations)
		em.generations = generations

		alivePos := make([]uint32, len(em.alivePos), size)
		copy(alivePos, em.alivePos)
		em.alivePos = alivePos
	}
	em.generations = em.generations[:size]
	em.alivePos = em.alivePos[:size]
}

// compactFree drops the consumed prefix of the free queue once it dominates
// the backing array.
func (em *entityManager) compactFree() {
	if em.freeHead == len(em.free) {
		em.free = em.free[:0]
		em.freeHead = 0
		return
	}
	if em.freeHead > 64 && em.freeHead*2 > len(em.free) {
		n := copy(em.free, em.free[em.freeHead:])
		em.free = em.free[:n]
		em.freeHead = 0
	}
}

// destroy retires e. Stale or out of range handles are ignored.
func (em *entityManager) destroy(e Entity) {
	if !em.isValid(e) {
		return
	}
	index := e.Index()

	pos := em.alivePos[index]
	last := em.alive[len(em.alive)-1]
	em.alive[pos] = last
	em.alivePos[last.Index()] = pos
	em.alive = em.alive[:len(em.alive)-1]

	em.generations[index] = (em.generations[index] + 1) & GenerationMask
	em.free = append(em.free, index)
}

// isValid reports whether e is alive. A handle whose generation matches a
// retired index that has not been handed out again is not alive.
func (em *entityManager) isValid(e Entity) bool {
	index := e.Index()
	if int(index) >= len(em.generations) || index >= em.nextIndex {
		return false
	}
	if em.generations[index] != e.Generation() {
		return false
	}
	pos := em.alivePos[index]
	return int(pos) < len(em.alive) && em.alive[pos] == e
}

// clear drops all state; every handle issued so far becomes invalid.
func (em *entityManager) clear() {
	em.generations = nil
	em.alive = nil
	em.alivePos = nil
	em.free = nil
	em.freeHead = 0
	em.nextIndex = 0
}

func (em *entityManager) len() int {
	return len(em.alive)
}

func (em *entityManager) capacity() int {
	return cap(em.generations)
}

// entities returns the alive handles in unspecified order.
func (em *entityManager) entities() []Entity {
	return em.alive
}

package physics

import "strconv"

// Handle is an opaque reference to a body owned by a Backend.
type Handle uint64

type slotID uint32
type generation uint32

const slotIDBits = 32

func makeHandle(id slotID, gen generation) Handle {
	return Handle(uint64(gen)<<slotIDBits | uint64(id))
}

func (h Handle) slot() slotID {
	return slotID(uint32(h))
}

func (h Handle) generation() generation {
	return generation(uint32(uint64(h) >> slotIDBits))
}

func (h Handle) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

func (h Handle) Valid() bool {
	return h.slot() > 0
}

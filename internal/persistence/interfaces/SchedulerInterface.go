package interfaces

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Close()
}

// PrunerInterface is implemented by caches that drop expired entries on demand.
type PrunerInterface interface {
	PruneExpired() int
}

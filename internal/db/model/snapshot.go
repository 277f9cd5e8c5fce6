package model

// SnapshotDocument stores a serialised engine state. Payload is JSON so that
// 256-bit amounts survive unchanged.
type SnapshotDocument struct {
	LastSeq uint64 `bson:"last_seq"`
	TakenAt int64  `bson:"taken_at"` // unix milliseconds
	Payload string `bson:"payload"`
}

type LastProcessedSeq struct {
	Seq uint64 `bson:"seq"`
}

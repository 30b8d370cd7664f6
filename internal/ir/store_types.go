package ir

// Artifact is one cached lowering result (store-layer).
// SnapshotHash is the primary key; Seq is a logical insertion clock.
type Artifact struct {
	SnapshotHash string `json:"snapshot_hash"`
	ArtifactHash string `json:"artifact_hash"`
	BuildID      string `json:"build_id"`
	Program      string `json:"program"`
	Assembly     string `json:"assembly"`
	IRVersion    string `json:"ir_version"`
	LowerVersion string `json:"lower_version"`
	Seq          int64  `json:"seq"`
}

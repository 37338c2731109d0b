package models

// CheckMetadataMode is the extra value of the CheckMetadataHash extension.
type CheckMetadataMode uint8

const (
	CheckMetadataModeDisabled CheckMetadataMode = 0
	CheckMetadataModeEnabled  CheckMetadataMode = 1
)

// MinCommitmentMetadataVersion is the first metadata version whose digest the
// runtime can recompute.
const MinCommitmentMetadataVersion = 15

// MetadataCommitment is the metadata hash attached to a transaction. When
// Required is false Digest is nil and nothing is attached.
type MetadataCommitment struct {
	Required bool
	Digest   *[32]byte
	Mode     CheckMetadataMode
}

// CommitmentRequired reports whether the descriptor needs a metadata hash.
func CommitmentRequired(d RuntimeDescriptor) bool {
	return d.MetadataVersion >= MinCommitmentMetadataVersion && d.HasSignedExtension(CheckMetadataHash)
}

// NewMetadataCommitment wraps a computed digest.
func NewMetadataCommitment(digest [32]byte) MetadataCommitment {
	return MetadataCommitment{Required: true, Digest: &digest, Mode: CheckMetadataModeEnabled}
}

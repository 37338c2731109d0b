package handlers

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"

	"github.com/skyvein-baas/client-skyvein-golang-api/metahash"
	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

// BuildCommitment returns the metadata commitment the runtime expects, or nil
// when the runtime does not check the metadata hash.
func BuildCommitment(res *Resolution, log logrus.FieldLogger) (*models.MetadataCommitment, error) {
	d := res.Descriptor
	if !models.CommitmentRequired(d) {
		log.WithField("metadata_version", d.MetadataVersion).Debug("metadata hash not required")
		return nil, nil
	}

	digest, err := metahash.Build(res.RawMetadata, metahash.ChainInfo{
		SpecVersion:  d.SpecVersion,
		SpecName:     d.SpecName,
		Base58Prefix: d.AddressPrefix,
		Decimals:     d.Decimals,
		TokenSymbol:  d.TokenSymbol,
	})
	if err != nil {
		return nil, models.NewError(models.ErrCommitmentBuild, "metadata", err)
	}

	c := models.NewMetadataCommitment(digest)
	log.WithField("metadata_hash", hexutil.Encode(digest[:])).Info("metadata hash computed")
	return &c, nil
}

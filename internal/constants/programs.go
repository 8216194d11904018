package constants

// Program addresses
const (
	// SPL Governance default deployment. Realms may run their own instance,
	// in which case the governance owner recorded on the governed account wins.
	GovernanceProgramID = "GovER5Lthms3bLBqWub97yVrMmEogzX7xNjdXpPPCVZw"

	// Dual Finance staking options program
	StakingOptionsProgramID = "4yx1NJ4Vqf2zT1oVLk4SySBhhDJXmXFt88ncm4gPxtL7"

	// Dual Finance airdrop program
	AirdropProgramID = "tXmC2ARKqzPoX6wQAVmDj25XAQUN6JQe8iz19QR5Lo3"
)

// Proposal batching
const (
	// DefaultChunkBy is the number of serialized instructions grouped into a
	// single proposal transaction when an envelope does not say otherwise.
	DefaultChunkBy = 2

	// MaxSeedLength bounds every PDA seed, including staking option names.
	MaxSeedLength = 32
)

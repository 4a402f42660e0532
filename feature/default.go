package feature

// DefaultVersion is the version label of DefaultSchema.
const DefaultVersion = "songsight-v1"

// defaultContinuous lists the scaled audio descriptors in vector order.
var defaultContinuous = []string{
	"acousticness",
	"danceability",
	"duration_ms",
	"energy",
	"instrumentalness",
	"key",
	"liveness",
	"loudness",
	"mode",
	"speechiness",
	"tempo",
	"time_signature",
	"valence",
	"popularity",
}

// defaultVocabulary lists the genre labels in vector order. The *_super
// labels are coarse super-genres derived from the fine-grained ones.
var defaultVocabulary = []string{
	"alternative_rnb", "atl_hip_hop", "banda", "baroque", "big_room",
	"brostep", "cali_rap", "ccm", "chamber_pop", "chillhop",
	"classical", "classical_era", "contemporary_country", "dance_pop", "early_music",
	"early_romantic_era", "edm", "electro_house", "electropop", "emo_rap",
	"folk_pop", "gangster_rap", "german_baroque", "grupera", "hip_hop",
	"indie_folk", "indie_pop", "indie_poptimism", "indie_rnb", "indie_rock",
	"indie_soul", "indietronica", "k_pop", "latin", "lo_fi_beats",
	"mellow_gold", "melodic_rap", "modern_rock", "neo_mellow", "norteno",
	"pop", "pop_edm", "pop_rap", "pop_rock", "post_teen_pop",
	"progressive_house", "progressive_trance", "ranchera", "rap", "regional_mexican",
	"regional_mexican_pop", "rock", "sleep", "soft_rock", "southern_hip_hop",
	"stomp_and_holler", "trance", "trap_music", "tropical_house", "underground_hip_hop",
	"uplifting_trance", "vapor_trap", "classical_super", "country_super", "folk_super",
	"house_super", "indian_super", "indie_super", "jazz_super", "latin_super",
	"metal_super", "rap_super", "reggae_super", "rock_super", "worship_super",
}

// DefaultSchema returns the 14 continuous + 75 genre layout of the track
// catalog.
func DefaultSchema() *Schema {
	return MustSchema(DefaultVersion, defaultContinuous, defaultVocabulary)
}

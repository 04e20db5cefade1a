package hcsave

// SaveDataKey is the key the current save format stores game data under.
const SaveDataKey = "save_data_key"

// EnvelopeVersion is the save version written for converted saves.
const EnvelopeVersion = 1

// Envelope wraps a decoded tree the way the release save format stores
// it: {"version": 1, "save_data_key": <tree>}.
type Envelope struct {
	Version  int
	Key      string
	SaveData any
}

// NewEnvelope wraps tree under SaveDataKey with the current version.
func NewEnvelope(tree any) *Envelope {
	return &Envelope{Version: EnvelopeVersion, Key: SaveDataKey, SaveData: tree}
}

// Object returns the envelope as a tree ready for serialization.
func (e *Envelope) Object() Object {
	key := e.Key
	if key == "" {
		key = SaveDataKey
	}
	return Object{"version": e.Version, key: e.SaveData}
}

package port

// ResponseStore is the persistent cache of model responses plus the
// progress ledger used to resume interrupted runs. Keys are fingerprints
// (see domain.Fingerprint); progress payloads are opaque to the store.
type ResponseStore interface {
	Get(key string) (string, bool)

	Set(key, value string) error

	Progress() (map[string][]byte, error)

	SetProgressEntry(key string, payload []byte) error

	ClearProgress() error

	Close() error
}

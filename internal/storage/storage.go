package storage

// ImageStore persists uploaded listing images and serves them back by a
// stable relative URL.
type ImageStore interface {
	// Save writes data under the given generated filename and returns the
	// relative URL the file is reachable at.
	Save(filename string, data []byte) (string, error)
	// Remove deletes the file behind a URL previously returned by Save.
	Remove(url string) error
}

package dto

// ReportFile is a rendered report ready for download or storage.
type ReportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

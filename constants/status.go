package constants

// ImageStatus is the outcome recorded for one image in a batch.
type ImageStatus string

// Stable values (store these exact strings in DB).
const (
	ImageStatusQueued     ImageStatus = "QUEUED"    // accepted, not yet recognized
	ImageStatusRecognized ImageStatus = "OCR_OK"    // text recovered
	ImageStatusExtracted  ImageStatus = "EXTRACTED" // candidates produced (possibly zero)
	ImageStatusFailed     ImageStatus = "FAILED"    // recognition or storage failure
)

// ImageConfidenceThreshold flags recognitions that should be reviewed with extra care.
const ImageConfidenceThreshold = 0.6

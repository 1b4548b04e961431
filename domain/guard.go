package domain

type RenderRequest struct {
	RecordId string
	Field    string
	Content  string
}

type RenderResponse struct {
	Container   string
	ContentType string
	Format      string
	Width       int
	Height      int
	SizeInBytes int
	Digest      string
	ImagePath   string
}

type Payload struct {
	RecordId       string
	Field          string
	Encoded        string
	DeclaredFormat string
	EstimatedSize  int
}

type PayloadCheck struct {
	Ok      bool
	Stage   string
	Reason  string
	Payload *Payload
}

type ProbeResult struct {
	Verified    bool
	Stage       string
	Reason      string
	Format      string
	ContentType string
	Width       int
	Height      int
	Data        []byte
	Digest      string
}

type RenderedImage struct {
	Digest      string
	Format      string
	ContentType string
	Width       int
	Height      int
	Data        []byte
}

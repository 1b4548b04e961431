package domain

type ViewerInfo struct {
	ViewerId    string
	DisplayName string
}

type VerifyViewerRequest struct {
	Token string
}

type VerifyViewerResponse struct {
	Verified    bool
	ErrorReason string
	Viewer      *ViewerInfo
}

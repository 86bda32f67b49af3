package model

// ClientHints are the environment signals the survey page reports for
// fingerprinting. Zero values mean "not reported".
type ClientHints struct {
	Language            string  `json:"language" binding:"max=35"`
	ScreenWidth         int     `json:"screen_width" binding:"gte=0,lte=100000"`
	ScreenHeight        int     `json:"screen_height" binding:"gte=0,lte=100000"`
	TimezoneOffset      int     `json:"timezone_offset" binding:"gte=-1440,lte=1440"`
	Canvas              string  `json:"canvas" binding:"max=65536"`
	HardwareConcurrency int     `json:"hardware_concurrency" binding:"gte=0,lte=4096"`
	DeviceMemory        float64 `json:"device_memory" binding:"gte=0,lte=4096"`
}

// SubmissionRequest is the JSON variant of the survey form post.
type SubmissionRequest struct {
	Fields []FormField  `json:"fields" binding:"required,dive"`
	Hints  *ClientHints `json:"hints"`
}

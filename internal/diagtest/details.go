package diagtest

// KeyboardDetails records coverage of the physical key layout.
type KeyboardDetails struct {
	TotalKeys   int      `json:"total_keys"`
	PressedKeys int      `json:"pressed_keys"`
	MissingKeys []string `json:"missing_keys,omitempty"`
}

func (KeyboardDetails) Kind() ID { return IDKeyboard }

// USBRun is one measured pass at a single file size.
type USBRun struct {
	SizeMB         int     `json:"size_mb"`
	WriteSpeedMBps float64 `json:"write_speed_mbps"`
	ReadSpeedMBps  float64 `json:"read_speed_mbps"`
	Integrity      bool    `json:"integrity"`
}

// USBDetails records the throughput measurement outcome.
type USBDetails struct {
	Device         string   `json:"device"`
	MountPath      string   `json:"mount_path"`
	WriteSpeedMBps float64  `json:"write_speed_mbps"`
	ReadSpeedMBps  float64  `json:"read_speed_mbps"`
	USBType        string   `json:"usb_type"`
	Integrity      bool     `json:"integrity"`
	Runs           []USBRun `json:"runs,omitempty"`
}

func (USBDetails) Kind() ID { return IDUSB }

// WebcamDetails records the capture outcome and operator confirmation.
type WebcamDetails struct {
	Device         string `json:"device"`
	FramesCaptured int    `json:"frames_captured"`
	SnapshotPath   string `json:"snapshot_path,omitempty"`
	Confirmed      bool   `json:"confirmed"`
}

func (WebcamDetails) Kind() ID { return IDWebcam }

// AudioDetails records the record/playback outcome and operator confirmation.
type AudioDetails struct {
	DurationSeconds int    `json:"duration_seconds"`
	RecordingPath   string `json:"recording_path,omitempty"`
	Confirmed       bool   `json:"confirmed"`
}

func (AudioDetails) Kind() ID { return IDAudio }

// ProbeDetails carries the flat fields of a non-interactive probe test
// (tpm, bluetooth, wifi).
type ProbeDetails struct {
	Probe  ID                `json:"probe"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (d ProbeDetails) Kind() ID { return d.Probe }

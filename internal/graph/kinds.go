package graph

// MediaKind is the declared media kind of a device or source.
type MediaKind int

// Media kinds.
const (
	KindVideo MediaKind = iota
	KindAudio
)

func (k MediaKind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// RouteKind classifies the media carried by a route when locating control
// interfaces or connecting stages. Interleaved carries video and audio in a
// single stream (DV style hardware); callers probe it first and fall back to
// the dedicated kind.
type RouteKind int

// Route classifications.
const (
	RouteInterleaved RouteKind = iota
	RouteVideo
	RouteAudio
)

func (r RouteKind) String() string {
	switch r {
	case RouteInterleaved:
		return "interleaved"
	case RouteVideo:
		return "video"
	case RouteAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// PinCategory distinguishes the functional sub-graph a connection belongs to.
type PinCategory int

// Pin categories.
const (
	CategoryCapture PinCategory = iota
	CategoryPreview
)

func (c PinCategory) String() string {
	if c == CategoryPreview {
		return "preview"
	}
	return "capture"
}

// Direction of a connection point on a stage.
type Direction int

// Connection point directions.
const (
	DirInput Direction = iota
	DirOutput
)

// ConnectorType is the physical-connector classification of a routing-stage
// input. Ordinals below connAudioFirst are video connectors, the rest audio;
// Kind relies on that ordering.
type ConnectorType int

// Video connector types.
const (
	ConnVideoTuner ConnectorType = iota + 1
	ConnVideoComposite
	ConnVideoSVideo
	ConnVideoRGB
	ConnVideoYRYBY
	ConnVideoSerialDigital
	ConnVideoParallelDigital
	ConnVideoSCSI
	ConnVideoAUX
	ConnVideo1394
	ConnVideoUSB
	ConnVideoDecoder
	ConnVideoEncoder
	ConnVideoSCART
	ConnVideoBlack
)

const connAudioFirst ConnectorType = 0x1000

// Audio connector types.
const (
	ConnAudioTuner ConnectorType = connAudioFirst + iota
	ConnAudioLine
	ConnAudioMic
	ConnAudioAESDigital
	ConnAudioSPDIFDigital
	ConnAudioSCSI
	ConnAudioAUX
	ConnAudio1394
	ConnAudioUSB
	ConnAudioDecoder
)

// Kind reports whether the connector carries video or audio.
func (c ConnectorType) Kind() MediaKind {
	if c < connAudioFirst {
		return KindVideo
	}
	return KindAudio
}

var connectorNames = map[ConnectorType]string{
	ConnVideoTuner:           "Video Tuner",
	ConnVideoComposite:       "Video Composite",
	ConnVideoSVideo:          "Video S-Video",
	ConnVideoRGB:             "Video RGB",
	ConnVideoYRYBY:           "Video YRYBY",
	ConnVideoSerialDigital:   "Video Serial Digital",
	ConnVideoParallelDigital: "Video Parallel Digital",
	ConnVideoSCSI:            "Video SCSI",
	ConnVideoAUX:             "Video AUX",
	ConnVideo1394:            "Video 1394",
	ConnVideoUSB:             "Video USB",
	ConnVideoDecoder:         "Video Decoder",
	ConnVideoEncoder:         "Video Encoder",
	ConnVideoSCART:           "Video SCART",
	ConnVideoBlack:           "Video Black",
	ConnAudioTuner:           "Audio Tuner",
	ConnAudioLine:            "Audio Line In",
	ConnAudioMic:             "Audio Microphone",
	ConnAudioAESDigital:      "Audio AES Digital",
	ConnAudioSPDIFDigital:    "Audio SPDIF Digital",
	ConnAudioSCSI:            "Audio SCSI",
	ConnAudioAUX:             "Audio AUX",
	ConnAudio1394:            "Audio 1394",
	ConnAudioUSB:             "Audio USB",
	ConnAudioDecoder:         "Audio Decoder",
}

// String returns the friendly name shown to users for a physical connector.
func (c ConnectorType) String() string {
	if name, ok := connectorNames[c]; ok {
		return name
	}
	return "Unknown Connector"
}

// WindowStyle is a bitmask of window style flags applied to a rendering
// surface before it is positioned over its host.
type WindowStyle uint32

// Window styles.
const (
	StyleChild WindowStyle = 1 << iota
	StyleClipSiblings
	StyleBorderless
)

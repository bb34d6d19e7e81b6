package format

type (
	FrameType       uint8
	CompressionType uint8
	SortOrder       uint8
)

const (
	FrameKeyframe FrameType = 0x1 // FrameKeyframe is a frame segmented from its full pixel content.
	FrameDelta    FrameType = 0x2 // FrameDelta is a frame segmented only from its changed-pixel diff.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	SortByArea     SortOrder = 0x1 // SortByArea orders blocks by pixel area, largest first.
	SortByPosition SortOrder = 0x2 // SortByPosition orders blocks by (MinY, MinX), top-left first.
)

func (f FrameType) String() string {
	switch f {
	case FrameKeyframe:
		return "Keyframe"
	case FrameDelta:
		return "Delta"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (s SortOrder) String() string {
	switch s {
	case SortByArea:
		return "Area"
	case SortByPosition:
		return "Position"
	default:
		return "Unknown"
	}
}

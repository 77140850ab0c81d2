// SPDX-License-Identifier: EPL-2.0

package probe

// Two bytes of MPEG frame sync occur by chance in raw PCM (a 16-bit sample
// of -1 is 0xFF 0xFF), so a stream only counts as MP3 when the header at
// offset 0 is valid and a second valid header sits exactly one frame later.

var mpegBitrates = [2][3][15]int{
	// MPEG-1: layer I, II, III
	{
		{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448},
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384},
		{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320},
	},
	// MPEG-2 and 2.5
	{
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
	},
}

var mpegSampleRates = map[int][3]int{
	3: {44100, 48000, 32000}, // MPEG-1
	2: {22050, 24000, 16000}, // MPEG-2
	0: {11025, 12000, 8000},  // MPEG-2.5
}

// mpegFrameLen returns the length of the frame whose header starts b, or 0
// if the header is invalid. Free-format frames count as invalid.
func mpegFrameLen(b []byte) int {
	if len(b) < 4 || b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return 0
	}

	version := int(b[1]>>3) & 3
	layerBits := int(b[1]>>1) & 3
	brIdx := int(b[2] >> 4)
	srIdx := int(b[2]>>2) & 3
	padding := int(b[2]>>1) & 1

	rates, ok := mpegSampleRates[version]
	if !ok || layerBits == 0 || brIdx == 0 || brIdx == 15 || srIdx == 3 {
		return 0
	}

	layer := 4 - layerBits // 1, 2 or 3
	table := 0
	if version != 3 {
		table = 1
	}
	bitrate := mpegBitrates[table][layer-1][brIdx] * 1000
	rate := rates[srIdx]

	switch {
	case layer == 1:
		return (12*bitrate/rate + padding) * 4
	case layer == 3 && version != 3:
		return 72*bitrate/rate + padding
	default:
		return 144*bitrate/rate + padding
	}
}

func mpegStream(b []byte) bool {
	n := mpegFrameLen(b)
	return n > 0 && mpegFrameLen(b[min(n, len(b)):]) > 0
}

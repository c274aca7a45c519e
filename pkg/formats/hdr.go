// Radiance RGBE (.hdr) format parser.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// HDR format errors.
var (
	ErrInvalidHDRHeader     = errors.New("invalid HDR header: expected '#?RADIANCE' or '#?RGBE'")
	ErrUnsupportedHDRFormat = errors.New("unsupported HDR pixel format")
	ErrInvalidHDRResolution = errors.New("invalid HDR resolution line")
	ErrTruncatedHDRData     = errors.New("truncated HDR data")
	ErrInvalidHDRScanline   = errors.New("invalid HDR scanline")
)

const (
	hdrFormatRGBE = "32-bit_rle_rgbe"
	// hdrMaxHeaderBytes bounds the header scan so garbage input fails fast.
	hdrMaxHeaderBytes = 64 * 1024
	hdrMinRLEWidth    = 8
	hdrMaxRLEWidth    = 0x7fff
)

// HDR is a decoded Radiance image with linear float RGB texels.
type HDR struct {
	Width    int
	Height   int
	Exposure float64
	Gamma    float64
	// Data holds RGB triples, top row first.
	Data []float32
}

// RGBA expands Data to RGBA with alpha 1.
func (h *HDR) RGBA() []float32 {
	out := make([]float32, h.Width*h.Height*4)
	for i := 0; i < h.Width*h.Height; i++ {
		out[i*4] = h.Data[i*3]
		out[i*4+1] = h.Data[i*3+1]
		out[i*4+2] = h.Data[i*3+2]
		out[i*4+3] = 1
	}
	return out
}

// ParseHDR parses a Radiance RGBE image.
func ParseHDR(data []byte) (*HDR, error) {
	r := bufio.NewReader(bytes.NewReader(data))

	h := &HDR{Exposure: 1, Gamma: 1}
	if err := parseHDRHeader(r, h); err != nil {
		return nil, err
	}

	h.Data = make([]float32, h.Width*h.Height*3)
	scan := make([]byte, h.Width*4)
	for y := 0; y < h.Height; y++ {
		if err := readHDRScanline(r, scan, h.Width); err != nil {
			return nil, fmt.Errorf("scanline %d: %w", y, err)
		}
		row := h.Data[y*h.Width*3:]
		for x := 0; x < h.Width; x++ {
			rgbeToFloat(scan[x*4:x*4+4], row[x*3:x*3+3])
		}
	}

	return h, nil
}

// ParseHDRFile reads and parses a Radiance RGBE file.
func ParseHDRFile(path string) (*HDR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading HDR file: %w", err)
	}
	return ParseHDR(data)
}

func parseHDRHeader(r *bufio.Reader, h *HDR) error {
	read := 0
	line, err := r.ReadString('\n')
	if err != nil {
		return ErrInvalidHDRHeader
	}
	read += len(line)
	if !strings.HasPrefix(line, "#?RADIANCE") && !strings.HasPrefix(line, "#?RGBE") {
		return ErrInvalidHDRHeader
	}

	for {
		line, err = r.ReadString('\n')
		if err != nil {
			return ErrTruncatedHDRData
		}
		read += len(line)
		if read > hdrMaxHeaderBytes {
			return ErrInvalidHDRHeader
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.HasPrefix(line, "#") {
			continue
		}
		switch strings.TrimSpace(key) {
		case "FORMAT":
			if strings.TrimSpace(value) != hdrFormatRGBE {
				return fmt.Errorf("%w: %s", ErrUnsupportedHDRFormat, value)
			}
		case "EXPOSURE":
			if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				h.Exposure = f
			}
		case "GAMMA":
			if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				h.Gamma = f
			}
		}
	}

	line, err = r.ReadString('\n')
	if err != nil && line == "" {
		return ErrTruncatedHDRData
	}
	// only the standard orientation is supported
	var height, width int
	if _, err := fmt.Sscanf(strings.TrimSpace(line), "-Y %d +X %d", &height, &width); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidHDRResolution, strings.TrimSpace(line))
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidHDRResolution, width, height)
	}
	h.Width, h.Height = width, height
	return nil
}

// readHDRScanline decodes one scanline into scan as RGBE quadruples.
func readHDRScanline(r *bufio.Reader, scan []byte, width int) error {
	head, err := r.Peek(4)
	if err != nil {
		return ErrTruncatedHDRData
	}

	newRLE := width >= hdrMinRLEWidth && width <= hdrMaxRLEWidth &&
		head[0] == 2 && head[1] == 2 && head[2]&0x80 == 0
	if !newRLE {
		if _, err := io.ReadFull(r, scan); err != nil {
			return ErrTruncatedHDRData
		}
		return nil
	}

	if _, err := r.Discard(4); err != nil {
		return ErrTruncatedHDRData
	}
	if int(head[2])<<8|int(head[3]) != width {
		return fmt.Errorf("%w: width mismatch", ErrInvalidHDRScanline)
	}

	// four planar channels, each run-length encoded
	for ch := 0; ch < 4; ch++ {
		for x := 0; x < width; {
			count, err := r.ReadByte()
			if err != nil {
				return ErrTruncatedHDRData
			}
			if count > 128 {
				n := int(count - 128)
				if x+n > width {
					return fmt.Errorf("%w: run overflows line", ErrInvalidHDRScanline)
				}
				v, err := r.ReadByte()
				if err != nil {
					return ErrTruncatedHDRData
				}
				for i := 0; i < n; i++ {
					scan[(x+i)*4+ch] = v
				}
				x += n
				continue
			}

			n := int(count)
			if n == 0 || x+n > width {
				return fmt.Errorf("%w: bad literal count %d", ErrInvalidHDRScanline, n)
			}
			for i := 0; i < n; i++ {
				v, err := r.ReadByte()
				if err != nil {
					return ErrTruncatedHDRData
				}
				scan[(x+i)*4+ch] = v
			}
			x += n
		}
	}
	return nil
}

func rgbeToFloat(rgbe []byte, rgb []float32) {
	if rgbe[3] == 0 {
		rgb[0], rgb[1], rgb[2] = 0, 0, 0
		return
	}
	scale := float32(math.Ldexp(1, int(rgbe[3])-128) / 255)
	rgb[0] = float32(rgbe[0]) * scale
	rgb[1] = float32(rgbe[1]) * scale
	rgb[2] = float32(rgbe[2]) * scale
}

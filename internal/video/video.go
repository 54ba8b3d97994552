package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"
)

// Encoder is the ffmpeg-backed part of frame generation.
type Encoder interface {
	// EncodeStill writes one frame as a lossy WebP still.
	EncodeStill(ctx context.Context, img image.Image, path string, quality int) error
	// Assemble builds a video from a numbered frame sequence.
	Assemble(ctx context.Context, p AssembleParams) error
	// Poster converts one frame into a WebP poster image.
	Poster(ctx context.Context, framePath, posterPath string, quality int) error
}

// AssembleParams describes one video container built from frame_%04d files.
type AssembleParams struct {
	Pattern   string // например out/frame_%04d.webp
	Output    string
	Container string // "mp4" или "webm"
	FPS       int
	CRF       int
	Encoder   string // H.264 encoder for mp4; empty means libx264
}

type FFmpegEncoder struct {
	Binary string
}

func NewFFmpegEncoder() *FFmpegEncoder {
	return &FFmpegEncoder{Binary: "ffmpeg"}
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary == "" {
		return "ffmpeg"
	}
	return e.Binary
}

func (e *FFmpegEncoder) EncodeStill(ctx context.Context, img image.Image, path string, quality int) error {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	cmd := exec.CommandContext(ctx, e.binary(), buildStillArgs(w, h, path, quality)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	// Кадр уходит в ffmpeg как raw RGBA, без промежуточного файла
	if err := writeRawRGBA(stdin, img); err != nil {
		stdin.Close()
		cmd.Wait()
		return fmt.Errorf("write raw error: %w", err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, out.String())
	}
	return nil
}

func (e *FFmpegEncoder) Assemble(ctx context.Context, p AssembleParams) error {
	args, err := buildAssembleArgs(p)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, e.binary(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg %s error: %v, output: %s", p.Container, err, string(out))
	}
	return nil
}

func (e *FFmpegEncoder) Poster(ctx context.Context, framePath, posterPath string, quality int) error {
	cmd := exec.CommandContext(ctx, e.binary(), buildPosterArgs(framePath, posterPath, quality)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg poster error: %v, output: %s", err, string(out))
	}
	return nil
}

func buildStillArgs(w, h int, path string, quality int) []string {
	return []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", w, h),
		"-i", "-",
		"-frames:v", "1",
		"-c:v", "libwebp",
		"-lossless", "0",
		"-quality", fmt.Sprintf("%d", quality),
		path,
	}
}

func buildAssembleArgs(p AssembleParams) ([]string, error) {
	if p.FPS <= 0 {
		return nil, fmt.Errorf("некорректный FPS: %d", p.FPS)
	}
	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", p.Pattern,
	}

	switch p.Container {
	case "webm":
		// VP9 с альфа-каналом
		args = append(args,
			"-c:v", "libvpx-vp9",
			"-pix_fmt", "yuva420p",
			"-crf", fmt.Sprintf("%d", p.CRF),
			"-b:v", "0",
		)
	case "mp4":
		enc := p.Encoder
		if enc == "" {
			enc = "libx264"
		}
		args = append(args, "-c:v", enc, "-pix_fmt", "yuv420p")
		args = append(args, h264Quality(enc, p.CRF)...)
		args = append(args, "-movflags", "+faststart")
	default:
		return nil, fmt.Errorf("неизвестный контейнер: %s", p.Container)
	}

	return append(args, p.Output), nil
}

// h264Quality maps a CRF-like value onto the knob each encoder understands.
func h264Quality(encoder string, crf int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox не понимает -crf, переводим в битрейт
		return []string{"-b:v", fmt.Sprintf("%dk", (52-crf)*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", crf)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", crf), "-preset", "medium"}
	}
}

func buildPosterArgs(framePath, posterPath string, quality int) []string {
	args := []string{"-y", "-i", framePath}
	if strings.HasSuffix(strings.ToLower(posterPath), ".webp") {
		args = append(args, "-c:v", "libwebp")
	}
	return append(args, "-q:v", fmt.Sprintf("%d", quality), "-frames:v", "1", posterPath)
}

// writeRawRGBA streams tightly packed RGBA rows, copying when img has padding
// or an offset origin.
func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

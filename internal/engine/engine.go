package engine

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ivlev/proteinframes/internal/analyzer"
	"github.com/ivlev/proteinframes/internal/canvas"
	"github.com/ivlev/proteinframes/internal/config"
	"github.com/ivlev/proteinframes/internal/renderer"
	"github.com/ivlev/proteinframes/internal/source"
	"github.com/ivlev/proteinframes/internal/structure"
	"github.com/ivlev/proteinframes/internal/system"
	"github.com/ivlev/proteinframes/internal/video"
)

// FrameProject renders one structure into a numbered frame sequence plus the
// optional video, poster, manifest and QR code.
type FrameProject struct {
	Config   *config.GeneratorConfig
	Loader   structure.Loader // nil: синтетическая спираль
	Encoder  video.Encoder
	Renderer *renderer.Renderer

	// BenchmarkLog receives one line per run when ShowStats is set.
	BenchmarkLog string
	Now          func() time.Time
}

func NewFrameProject(cfg *config.GeneratorConfig, loader structure.Loader, enc video.Encoder) *FrameProject {
	return &FrameProject{
		Config:       cfg,
		Loader:       loader,
		Encoder:      enc,
		Renderer:     renderer.New(),
		BenchmarkLog: "benchmark.log",
		Now:          time.Now,
	}
}

// LoaderFor picks the structure source for a config: a local file wins over
// an id, and neither means the synthetic helix.
func LoaderFor(cfg *config.GeneratorConfig) structure.Loader {
	switch {
	case cfg.PDBFile != "":
		return structure.FileLoader{Path: cfg.PDBFile}
	case cfg.PDBID != "":
		return structure.NewFetcher()
	default:
		return nil
	}
}

type RenderResult struct {
	Index int
	Image *image.RGBA
}

// Result lists everything a run wrote.
type Result struct {
	Frames   []string
	Videos   []string
	Poster   string
	QRCode   string
	Manifest string
	Warnings int
}

func (p *FrameProject) Run(ctx context.Context) (*Result, error) {
	cfg := p.Config
	startTime := p.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bg, err := colorful.Hex(cfg.Background)
	if err != nil {
		return nil, fmt.Errorf("некорректный цвет фона %q: %w", cfg.Background, err)
	}
	detector, err := analyzer.NewDetector(cfg.Detector, bg)
	if err != nil {
		return nil, err
	}
	ext := cfg.Extension()
	if ext == ".webp" && p.Encoder == nil {
		return nil, fmt.Errorf("для WebP нужен кодировщик ffmpeg")
	}

	var atoms []structure.Atom
	if p.Loader != nil {
		fmt.Printf("[*] Загрузка структуры %s...\n", cfg.PDBID)
		atoms, err = p.Loader.Load(ctx, cfg.PDBID)
		if err != nil {
			return nil, fmt.Errorf("ошибка загрузки структуры: %w", err)
		}
		fmt.Printf("[*] Атомов: %d\n", len(atoms))
	} else {
		fmt.Println("[*] Структура не задана, рисуем синтетическую спираль")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, err
	}

	n := cfg.FrameCount
	numRenderWorkers := cfg.Workers
	if numRenderWorkers <= 0 {
		numRenderWorkers = system.RecommendedWorkers(cfg.Width, cfg.Height)
	}
	numRenderWorkers = min(numRenderWorkers, n)
	// Энкодеры ограничены отдельно: каждый WebP кадр это процесс ffmpeg
	numEncodeWorkers := min(4, n)

	fmt.Println("--- [PROJECT: PROTEIN FRAMES] ---")
	fmt.Printf("[*] Структура: %s | Кадров: %d | Формат: %s\n", displayID(cfg.PDBID), n, strings.TrimPrefix(ext, "."))
	fmt.Printf("[*] Разрешение: %dx%d | Потоков рендера: %d\n", cfg.Width, cfg.Height, numRenderWorkers)
	fmt.Println("-----------------------------")

	// jobs -> renderPool -> renderResults -> encodePool -> results
	jobs := make(chan int, n)
	renderResults := make(chan *RenderResult, numEncodeWorkers)
	results := make([]string, n)
	var warnings, ready atomic.Int64

	var wgRender, wgEncode sync.WaitGroup
	renderStart := p.Now()

	for w := 0; w < numRenderWorkers; w++ {
		wgRender.Add(1)
		go func() {
			defer wgRender.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				img := p.renderFrame(i, n, bg, atoms)
				if ins, err := analyzer.Inspect(detector, img); err != nil {
					log.Printf("[!] Ошибка анализа кадра %d: %v", i, err)
				} else if ins.Blank {
					warnings.Add(1)
					log.Printf("[!] Кадр %d пустой", i)
				} else if ins.Clipped {
					warnings.Add(1)
					log.Printf("[!] Кадр %d: структура касается края %v", i, ins.Content)
				}
				renderResults <- &RenderResult{Index: i, Image: img}
			}
		}()
	}

	for w := 0; w < numEncodeWorkers; w++ {
		wgEncode.Add(1)
		go func() {
			defer wgEncode.Done()
			for res := range renderResults {
				path := filepath.Join(cfg.OutputDir, source.FrameName(res.Index, ext))
				err := p.writeFrame(ctx, res.Image, path, ext)
				system.PutImage(res.Image)
				if err != nil {
					log.Printf("[!] Ошибка записи кадра %d: %v", res.Index, err)
					continue
				}
				results[res.Index] = path
				if done := ready.Add(1); done%10 == 0 || int(done) == n {
					fmt.Printf("[>] Ready: %d/%d\n", done, n)
				}
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wgRender.Wait()
	renderEnd := p.Now()
	close(renderResults)
	wgEncode.Wait()
	encodeEnd := p.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, r := range results {
		if r == "" {
			return nil, fmt.Errorf("кадр %d не был создан. Проверьте логи", i)
		}
	}

	res := &Result{Frames: results, Warnings: int(warnings.Load())}

	assembleStart := p.Now()
	if err := p.assemble(ctx, res, ext); err != nil {
		return nil, err
	}
	if cfg.QRCode && cfg.PDBID != "" {
		res.QRCode = filepath.Join(cfg.OutputDir, qrName(cfg.PDBID))
		if err := WriteQRCode(cfg.PDBID, res.QRCode); err != nil {
			return nil, err
		}
		fmt.Printf("[*] QR-код: %s\n", res.QRCode)
	}

	m := NewManifest(cfg, p.Now())
	m.Videos = relative(cfg.OutputDir, res.Videos)
	if res.Poster != "" {
		m.Poster = filepath.Base(res.Poster)
	}
	if res.QRCode != "" {
		m.QRCode = filepath.Base(res.QRCode)
	}
	res.Manifest = filepath.Join(cfg.OutputDir, ManifestName)
	if err := WriteManifest(m, res.Manifest); err != nil {
		return nil, err
	}

	if cfg.ShowStats {
		st := Stats{
			Build:    cfg.BuildVersion,
			Input:    displayID(cfg.PDBID),
			Frames:   n,
			Total:    p.Now().Sub(startTime),
			Render:   renderEnd.Sub(renderStart),
			Encode:   encodeEnd.Sub(renderStart),
			Assemble: p.Now().Sub(assembleStart),
			Warnings: res.Warnings,
			Host:     system.Probe(),
		}
		fmt.Print(st.Report())
		if err := st.Append(p.BenchmarkLog, p.Now()); err != nil {
			fmt.Printf("[!] Не удалось записать %s: %v\n", p.BenchmarkLog, err)
		}
	}

	fmt.Printf("[+++] Успех! Кадров: %d, каталог: %s\n", n, cfg.OutputDir)
	return res, nil
}

func (p *FrameProject) renderFrame(i, n int, bg colorful.Color, atoms []structure.Atom) *image.RGBA {
	img := system.GetImage(p.Config.Width, p.Config.Height)
	c := canvas.NewContext(img)
	c.Fill(bg)
	p.Renderer.Render(c, renderer.FrameAngle(i, n), atoms)
	return img
}

func (p *FrameProject) writeFrame(ctx context.Context, img *image.RGBA, path, ext string) error {
	if ext == ".webp" {
		return p.Encoder.EncodeStill(ctx, img, path, p.Config.Quality)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch ext {
	case ".png":
		err = png.Encode(f, img)
	default: // .jpg, .jpeg
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: p.Config.Quality})
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// assemble builds the requested videos and, with any video, a poster from
// the first frame.
func (p *FrameProject) assemble(ctx context.Context, res *Result, ext string) error {
	cfg := p.Config
	var containers []string
	switch cfg.Video {
	case "mp4", "webm":
		containers = []string{cfg.Video}
	case "both":
		containers = []string{"webm", "mp4"}
	default:
		return nil
	}
	if p.Encoder == nil {
		return fmt.Errorf("для сборки видео нужен кодировщик ffmpeg")
	}

	fmt.Println("[*] Сборка видео...")
	base := filepath.Join(cfg.OutputDir, "protein_"+strings.ToLower(displayID(cfg.PDBID)))
	encoder := ""
	for _, c := range containers {
		if c == "mp4" && encoder == "" {
			encoder = system.GetBestH264Encoder()
		}
		out := base + "." + c
		err := p.Encoder.Assemble(ctx, video.AssembleParams{
			Pattern:   filepath.Join(cfg.OutputDir, "frame_%04d"+ext),
			Output:    out,
			Container: c,
			FPS:       cfg.FPS,
			CRF:       cfg.CRF,
			Encoder:   encoder,
		})
		if err != nil {
			return fmt.Errorf("ошибка сборки видео: %w", err)
		}
		res.Videos = append(res.Videos, out)
		fmt.Printf("[*] Видео: %s\n", out)
	}

	res.Poster = base + "_poster.webp"
	if err := p.Encoder.Poster(ctx, res.Frames[0], res.Poster, cfg.Quality); err != nil {
		return fmt.Errorf("ошибка создания постера: %w", err)
	}
	return nil
}

func displayID(id string) string {
	if id == "" {
		return "helix"
	}
	return id
}

func relative(dir string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if rel, err := filepath.Rel(dir, p); err == nil {
			out = append(out, rel)
			continue
		}
		out = append(out, p)
	}
	return out
}

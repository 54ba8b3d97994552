package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/ivlev/proteinframes/internal/config"
	"github.com/ivlev/proteinframes/internal/engine"
	"github.com/ivlev/proteinframes/internal/system"
	"github.com/ivlev/proteinframes/internal/video"
)

// Version задаётся при сборке: -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	configPtr := flag.String("config", "", "YAML с настройками генератора (флаги имеют приоритет)")
	pdbPtr := flag.String("pdb", "", "Идентификатор PDB (по умолчанию 2K6O)")
	pdbFilePtr := flag.String("pdb-file", "", "Локальный PDB файл вместо загрузки с RCSB")
	framesPtr := flag.Int("frames", 0, "Количество кадров на полный оборот")
	outputPtr := flag.String("output", "", "Каталог для кадров")
	widthPtr := flag.Int("width", 0, "Ширина кадра")
	heightPtr := flag.Int("height", 0, "Высота кадра")
	formatPtr := flag.String("format", "", "Формат кадров: webp, png, jpg")
	qualityPtr := flag.Int("quality", 0, "Качество WebP/JPEG (1-100)")
	workersPtr := flag.Int("workers", 0, "Потоки рендера (0 - по числу ядер и памяти)")
	backgroundPtr := flag.String("background", "", "Цвет фона, например #fafafa")
	videoPtr := flag.String("video", "", "Видео из кадров: none, mp4, webm, both")
	fpsPtr := flag.Int("fps", 0, "FPS видео")
	crfPtr := flag.Int("crf", 0, "CRF видео")
	qrPtr := flag.Bool("qr", false, "Сохранить QR-код со ссылкой на страницу структуры")
	statsPtr := flag.Bool("stats", false, "Показать отчёт о производительности и дописать benchmark.log")
	helixPtr := flag.Bool("helix", false, "Рисовать синтетическую спираль без структуры")

	flag.Parse()

	cfg := config.DefaultGenerator()
	if *configPtr != "" {
		loaded, err := config.LoadGenerator(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения конфигурации: %v", err)
		}
		cfg = loaded
		fmt.Printf("[*] Конфигурация: %s\n", *configPtr)
	}

	// Явно заданные флаги перекрывают файл
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pdb":
			cfg.PDBID = *pdbPtr
		case "pdb-file":
			cfg.PDBFile = *pdbFilePtr
		case "frames":
			cfg.FrameCount = *framesPtr
		case "output":
			cfg.OutputDir = *outputPtr
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "format":
			cfg.Format = *formatPtr
		case "quality":
			cfg.Quality = *qualityPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "background":
			cfg.Background = *backgroundPtr
		case "video":
			cfg.Video = *videoPtr
		case "fps":
			cfg.FPS = *fpsPtr
		case "crf":
			cfg.CRF = *crfPtr
		case "qr":
			cfg.QRCode = *qrPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		}
	})
	if *helixPtr {
		cfg.PDBID, cfg.PDBFile = "", ""
	}
	cfg.BuildVersion = Version

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	var enc video.Encoder
	if system.HasFFmpeg() {
		enc = video.NewFFmpegEncoder()
		if cfg.Extension() == ".webp" && !system.HasEncoder("libwebp") {
			log.Fatalf("[-] ffmpeg собран без libwebp, выберите -format png")
		}
	} else if cfg.Extension() == ".webp" || (cfg.Video != "" && cfg.Video != "none") {
		log.Fatalf("[-] Ошибка: ffmpeg не найден в PATH")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	project := engine.NewFrameProject(&cfg, engine.LoaderFor(&cfg), enc)
	if _, err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка генерации: %v", err)
	}
}

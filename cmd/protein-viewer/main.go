package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/ivlev/proteinframes/internal/animation"
	"github.com/ivlev/proteinframes/internal/config"
	"github.com/ivlev/proteinframes/internal/display"
	"github.com/ivlev/proteinframes/internal/display/window"
	"github.com/ivlev/proteinframes/internal/source"
	"github.com/ivlev/proteinframes/internal/viewer"
)

func main() {
	configPtr := flag.String("config", "", "YAML с переопределениями настроек просмотра")
	structurePtr := flag.String("structure", "", "PDB id или имя структуры из каталога")
	catalogPtr := flag.String("catalog", "", "YAML каталог структур (по умолчанию встроенный)")
	dumpCatalogPtr := flag.String("dump-catalog", "", "Записать каталог в YAML и выйти")
	modePtr := flag.String("mode", "terminal", "Режим: terminal, window, snapshot")
	framesPathPtr := flag.String("frames-path", "", "Каталог или URL с кадрами frame_NNNN")
	widthPtr := flag.Int("width", 800, "Ширина окна или снимка (CSS пиксели)")
	heightPtr := flag.Int("height", 600, "Высота окна или снимка (CSS пиксели)")
	dprPtr := flag.Float64("dpr", 1, "Плотность пикселей снимка")
	scrollPtr := flag.Float64("scroll", 0, "Позиция прокрутки страницы для снимка")
	ticksPtr := flag.Int("ticks", 60, "Количество кадров анимации для снимка")
	outPtr := flag.String("out", "snapshot.png", "PNG для режима snapshot")
	logPtr := flag.String("log", "", "Файл журнала для режима terminal")

	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}
	if *framesPathPtr != "" {
		cfg.FrameBasePath = *framesPathPtr
	}

	catalog := config.DefaultCatalog()
	if *catalogPtr != "" {
		catalog, err = config.ReadCatalog(*catalogPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения каталога: %v", err)
		}
	}
	if *dumpCatalogPtr != "" {
		if err := config.WriteCatalog(catalog, *dumpCatalogPtr); err != nil {
			log.Fatalf("[-] Ошибка записи каталога: %v", err)
		}
		fmt.Printf("[+++] Каталог сохранён: %s\n", *dumpCatalogPtr)
		return
	}

	info := config.DefaultStructure()
	if *structurePtr != "" {
		found, ok := catalog.Find(*structurePtr)
		if !ok {
			log.Fatalf("[-] Структура %q не найдена в каталоге", *structurePtr)
		}
		info = found
	} else if len(catalog.Structures) > 0 {
		info = catalog.Structures[0]
	}

	checkFrameDir(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := viewer.Options{Config: cfg, Structure: info}

	switch *modePtr {
	case "snapshot":
		opts.Scheduler = animation.NewManualScheduler()
		snap := viewer.RenderHeadless(ctx, opts, *widthPtr, *heightPtr, *dprPtr, *scrollPtr, *ticksPtr)
		if snap.Image == nil {
			log.Fatalf("[-] Пустой снимок: проверьте -width и -height")
		}
		f, err := os.Create(*outPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка создания файла: %v", err)
		}
		if err := png.Encode(f, snap.Image); err != nil {
			f.Close()
			log.Fatalf("[-] Ошибка записи PNG: %v", err)
		}
		f.Close()
		fmt.Printf("[*] Кадр %d/%d | текущий %.2f | цель %.2f | синтетика: %v\n",
			snap.Position.Index, snap.Position.Frames, snap.Position.Current, snap.Position.Target, snap.Status.Synthetic)
		fmt.Printf("[+++] Снимок сохранён: %s\n", *outPtr)

	case "window":
		sched := animation.NewManualScheduler()
		game := window.NewGame(sched, info)
		opts.Scheduler = sched
		opts.Presenter = game
		v := viewer.New(opts)
		game.Attach(v)
		v.Mount(ctx)
		defer v.Unmount()
		if err := window.Run(game, info.Name, *widthPtr, *heightPtr); err != nil {
			log.Fatalf("[-] Ошибка окна: %v", err)
		}

	case "terminal":
		// Журнал не должен портить экран
		logOut := io.Discard
		if *logPtr != "" {
			f, err := os.OpenFile(*logPtr, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				log.Fatalf("[-] Ошибка открытия журнала: %v", err)
			}
			defer f.Close()
			logOut = f
		}
		log.SetOutput(logOut)

		screen, err := tcell.NewScreen()
		if err != nil {
			log.SetOutput(os.Stderr)
			log.Fatalf("[-] Ошибка терминала: %v", err)
		}
		if err := screen.Init(); err != nil {
			log.SetOutput(os.Stderr)
			log.Fatalf("[-] Ошибка инициализации терминала: %v", err)
		}

		term := display.NewTerminal(screen, info)
		opts.Presenter = term
		v := viewer.New(opts)
		term.Attach(v)
		v.Mount(ctx)
		term.Run(ctx)
		v.Unmount()
		screen.Fini()

	default:
		log.Fatalf("[-] Неизвестный режим %q (terminal, window, snapshot)", *modePtr)
	}
}

// checkFrameDir предупреждает, если локальный набор кадров неполон
func checkFrameDir(cfg config.Config) {
	dir, ok := source.New(cfg.FrameBasePath, cfg.FrameFormat).(*source.DirSource)
	if !ok || cfg.FrameCount == 0 {
		return
	}
	n, err := dir.Count()
	if err != nil {
		log.Printf("[!] Каталог кадров недоступен: %v", err)
		return
	}
	if n < cfg.FrameCount {
		log.Printf("[!] Найдено %d из %d кадров, будет показана спираль", n, cfg.FrameCount)
		return
	}
	if w, h, err := dir.Dimensions(0); err == nil {
		log.Printf("[*] Кадры %dx%d: %s", w, h, cfg.FrameBasePath)
	}
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/nvr-ai/go-detect/detector"
	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/inference"
	"github.com/nvr-ai/go-detect/inference/providers"
	"github.com/nvr-ai/go-detect/logger"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/yolov8"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to YAML configuration file")
		imagePath   = flag.String("image", "", "Path to the input image")
		modelPath   = flag.String("model", "", "Path to ONNX model file (overrides config)")
		classesPath = flag.String("classes", "", "Path to class names file, one per line (overrides config)")
		engineName  = flag.String("engine", string(inference.EngineONNX), "Inference engine: onnx or opencv")
		libPath     = flag.String("ort-lib", "", "Path to the onnxruntime shared library")
		provider    = flag.String("provider", "cpu", "onnxruntime execution provider: cpu, cuda, coreml or openvino")
		confidence  = flag.Float64("conf", -1, "Confidence threshold (overrides config)")
		iou         = flag.Float64("iou", -1, "NMS IoU threshold (overrides config)")
		jsonOut     = flag.String("json", "", "Write detections as JSON to this path")
		development = flag.Bool("dev", false, "Human-readable debug logging")
	)
	flag.Parse()

	initLogger := logger.InitProduction
	if *development {
		initLogger = logger.InitDevelopment
	}
	if err := initLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *imagePath == "" {
		logger.Log().Fatal("Input image is required (-image)")
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		logger.Log().Fatal("Failed to load config", zap.Error(err))
	}
	if *modelPath != "" {
		cfg.Path = *modelPath
	}
	if *classesPath != "" {
		cfg.ClassesPath = *classesPath
	}
	if *confidence >= 0 {
		cfg.ConfidenceThreshold = float32(*confidence)
	}
	if *iou >= 0 {
		cfg.IoUThreshold = float32(*iou)
	}
	if err := cfg.Validate(); err != nil {
		logger.Log().Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *engineName, *provider, *libPath, *imagePath, *jsonOut); err != nil {
		logger.Log().Error("Detection failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func loadConfig(path string) (*model.Config, error) {
	if path == "" {
		cfg := model.DefaultConfig()
		return &cfg, nil
	}
	return model.LoadConfig(path)
}

func run(ctx context.Context, cfg *model.Config, engineName, provider, libPath, imagePath, jsonOut string) error {
	log := logger.Log()

	classes := models.YOLOClasses
	if cfg.ClassesPath != "" {
		loaded, err := models.LoadClassNames(cfg.ClassesPath)
		if err != nil {
			return err
		}
		classes = loaded
	}
	log.Info("Loaded classes", zap.Int("count", classes.Len()))

	kind, err := inference.ParseEngineType(engineName)
	if err != nil {
		return err
	}
	backend, err := providers.ParseBackend(provider)
	if err != nil {
		return err
	}

	engine, err := inference.NewEngine(kind, inference.EngineArgs{
		ModelPath:   cfg.Path,
		InputSize:   cfg.InputSize,
		InputName:   cfg.InputName,
		OutputName:  cfg.OutputName,
		OutputShape: cfg.OutputShape(),
		LibraryPath: libPath,
		Provider:    providers.Options{Backend: backend},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create %s engine", kind)
	}
	defer engine.Close()

	postprocessor, err := yolov8.NewModel(yolov8.NewModelArgs{
		Config:  *cfg,
		Classes: classes,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	img, err := images.Load(imagePath)
	if err != nil {
		return err
	}

	res, err := detector.New(engine, postprocessor, log).Detect(ctx, img)
	if err != nil {
		return err
	}

	for _, obj := range res.Objects {
		fmt.Printf("%s %.2f %d %d %d %d\n",
			obj.Label, obj.Confidence, obj.Box.X, obj.Box.Y, obj.Box.Width, obj.Box.Height)
	}

	if jsonOut != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to encode detections")
		}
		if err := os.WriteFile(jsonOut, data, 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", jsonOut)
		}
		log.Info("Wrote detections", zap.String("path", jsonOut))
	}

	return nil
}

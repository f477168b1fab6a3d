package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"catmatch/internal/classifier"
	"catmatch/internal/config"
	"catmatch/internal/domain"
	"catmatch/internal/repository"
	"catmatch/internal/service"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	// La CLI solo lee archivos locales; Postgres queda para la API.
	breedRepo := repository.NewFileBreedRepository(cfg.CatalogTraitsPath, cfg.CatalogBreedsPath)
	catalogSvc := service.NewCatalogService(breedRepo, logger)
	recommendSvc := service.NewRecommendationService(catalogSvc, service.NewImageResolver(cfg.AssetsDir), cfg.RecommendTopK, logger)

	var loader classifier.Loader
	if cfg.ModelBaseURL != "" {
		loader = classifier.NewHTTPLoader(cfg.ModelBaseURL, cfg.ModelName, cfg.ModelHTTPTimeout(), logger)
	}
	classifierSvc := service.NewClassifierService(loader, logger, service.ClassifierOptions{
		LoadTimeout:    cfg.ModelLoadTimeout,
		PredictTimeout: cfg.ModelPredictTimeout,
		MaxImageBytes:  cfg.MaxUploadBytes,
		MaxImagePixels: cfg.MaxImagePixels,
	})

	for {
		fmt.Println("\n===== Recomendador de Gatos =====")
		fmt.Println("[R] Recomendar razas")
		fmt.Println("[I] Identificar raza desde imagen")
		fmt.Println("[Q] Salir")
		fmt.Print("Seleccion: ")

		choice, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		switch strings.ToUpper(strings.TrimSpace(choice)) {
		case "R":
			runQuestionnaire(ctx, reader, recommendSvc, cfg.RecommendTopK)
		case "I":
			runClassification(ctx, reader, classifierSvc)
		case "Q":
			return
		default:
			fmt.Println("Seleccion invalida.")
		}
	}
}

func runQuestionnaire(ctx context.Context, reader *bufio.Reader, recommender *service.RecommendationService, k int) {
	selections := make(map[domain.Category]domain.Flag, domain.NumCategories)
	for _, cat := range domain.AllCategories() {
		flag, err := askCategory(reader, cat)
		if err != nil {
			fmt.Printf("Cuestionario cancelado: %v\n", err)
			return
		}
		selections[cat] = flag
	}

	profile, err := domain.NewUserProfile(selections)
	if err != nil {
		fmt.Printf("Perfil invalido: %v\n", err)
		return
	}

	result := recommender.RecommendForProfile(ctx, profile, k)
	if result.Diagnostic != "" {
		fmt.Printf("Aviso: %s\n", result.Diagnostic)
	}
	if len(result.Recommendations) == 0 {
		fmt.Println("No hay razas para recomendar.")
		return
	}

	fmt.Println("\n--- Recomendaciones ---")
	for i, rec := range result.Recommendations {
		fmt.Printf("%d. %s (coincidencias: %d)\n", i+1, rec.BreedName, rec.MatchScore)
		if rec.Description != "" {
			fmt.Printf("   %s\n", rec.Description)
		}
		if rec.ImagePath != nil {
			fmt.Printf("   imagen: %s\n", *rec.ImagePath)
		}
	}
}

func askCategory(reader *bufio.Reader, cat domain.Category) (domain.Flag, error) {
	options := cat.Flags()
	for {
		fmt.Printf("\n%s:\n", cat.Label())
		for i, f := range options {
			fmt.Printf("  [%d] %s\n", i+1, f.Label())
		}
		fmt.Print("Opcion: ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, err
		}
		idx, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || idx < 1 || idx > len(options) {
			fmt.Println("Opcion invalida.")
			continue
		}
		return options[idx-1], nil
	}
}

func runClassification(ctx context.Context, reader *bufio.Reader, classifierSvc *service.ClassifierService) {
	fmt.Print("Ruta de la imagen: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	path := strings.TrimSpace(line)
	if path == "" {
		fmt.Println("Ruta vacia.")
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("No se pudo leer la imagen: %v\n", err)
		return
	}

	pred, err := classifierSvc.Classify(ctx, raw)
	switch {
	case errors.Is(err, classifier.ErrInvalidImage), errors.Is(err, service.ErrImageTooLarge):
		fmt.Printf("Imagen invalida: %v\n", err)
		return
	case errors.Is(err, service.ErrClassifierUnavailable):
		fmt.Printf("Clasificador no disponible: %v\n", err)
		return
	case err != nil:
		fmt.Printf("Error clasificando: %v\n", err)
		return
	}

	fmt.Printf("Raza estimada: %s\n", pred.Label)
	for _, label := range pred.Labels {
		fmt.Printf("  %-24s %.4f\n", label, pred.Probabilities[label])
	}
}

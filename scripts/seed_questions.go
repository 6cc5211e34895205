// Seeds the question bank with a small sample set.
//
// Usage: go run scripts/seed_questions.go

package main

import (
	"context"
	"log"
	"narraprep_backend/internal/config"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/repository"
	"narraprep_backend/internal/service"
	"narraprep_backend/pkg/database"
	"narraprep_backend/pkg/logger"

	"go.uber.org/zap"
)

func opts(correct int, contents ...string) []service.OptionRequest {
	out := make([]service.OptionRequest, len(contents))
	for i, c := range contents {
		out[i] = service.OptionRequest{Content: c, OptionType: model.OptionText, IsCorrect: i == correct}
	}
	return out
}

var sampleQuestions = []service.QuestionRequest{
	{
		Text:        "Which of the following is NOT a branch of the external carotid artery?",
		Explanation: "The ophthalmic artery arises from the internal carotid artery. Facial, maxillary and superficial temporal arteries branch from the external carotid.",
		Category:    model.Anatomy,
		Difficulty:  model.Medium,
		Tags:        []string{"head", "neck", "arteries", "carotid"},
		Options:     opts(2, "Facial artery", "Maxillary artery", "Ophthalmic artery", "Superficial temporal artery"),
	},
	{
		Text:        "Which hormone is primarily responsible for increasing intestinal calcium absorption?",
		Explanation: "Calcitriol, the active form of vitamin D, drives intestinal calcium absorption. PTH acts on bone and kidney; calcitonin lowers blood calcium.",
		Category:    model.Physiology,
		Difficulty:  model.Medium,
		Tags:        []string{"endocrinology", "calcium", "hormones", "vitamin D"},
		Options:     opts(1, "Parathyroid hormone", "Calcitriol", "Calcitonin", "Cortisol"),
	},
	{
		Text:        "A 67-year-old presents with fatigue, weight loss and bone pain. Labs show hypercalcemia, anemia and elevated total protein. What is the most likely diagnosis?",
		Explanation: "Hypercalcemia, anemia and a monoclonal gammopathy with lytic bone pain are classic for multiple myeloma.",
		Category:    model.Pathology,
		Difficulty:  model.Hard,
		Tags:        []string{"hematology", "oncology", "plasma cell disorders"},
		Options:     opts(1, "Chronic lymphocytic leukemia", "Multiple myeloma", "Paget's disease of bone", "Metastatic breast cancer"),
	},
	{
		Text:        "Which antibiotic class inhibits bacterial cell wall synthesis?",
		Explanation: "Beta-lactams bind penicillin-binding proteins and block peptidoglycan cross-linking.",
		Category:    model.Pharmacology,
		Difficulty:  model.Easy,
		Tags:        []string{"antibiotics", "microbiology", "cell wall"},
		Options:     opts(2, "Aminoglycosides", "Fluoroquinolones", "Beta-lactams", "Sulfonamides"),
	},
	{
		Text:        "Which of the following bacteria is NOT typically part of the normal human microbiota?",
		Explanation: "Clostridium tetani lives mainly in soil and animal feces.",
		Category:    model.Microbiology,
		Difficulty:  model.Medium,
		Tags:        []string{"microbiota", "bacteria", "normal flora"},
		Options:     opts(2, "Escherichia coli", "Staphylococcus epidermidis", "Clostridium tetani", "Lactobacillus species"),
	},
}

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	store := database.NewHandle(&cfg.Database, cfg.Server.Mode)
	defer store.Close()

	// the cache is left out; nothing reads questions while seeding
	questions := service.NewQuestionService(
		repository.NewQuestionRepository(store, nil),
		service.NewStorageService(cfg),
	)

	ctx := context.Background()
	created := 0
	for i := range sampleQuestions {
		q, err := questions.CreateQuestion(ctx, &sampleQuestions[i])
		if err != nil {
			logger.Log.Error("Failed to create question", zap.Int("index", i), zap.Error(err))
			continue
		}
		created++
		logger.Log.Info("Created question", zap.String("question_id", q.ID), zap.String("category", string(q.Category)))
	}
	logger.Log.Info("Seeding finished", zap.Int("created", created), zap.Int("total", len(sampleQuestions)))
}

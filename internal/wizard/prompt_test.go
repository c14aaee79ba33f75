package wizard

import (
	"strings"
	"testing"

	"github.com/Somati-x/stroyhub-bot/internal/catalog"
	"github.com/Somati-x/stroyhub-bot/internal/models"
)

func TestBuildPromptFullAnswers(t *testing.T) {
	req := models.GenerationRequest{Answers: map[string]string{
		catalog.KeyPlatform:     "Facebook",
		catalog.KeyPropertyType: "квартира",
		catalog.KeyRooms:        "2",
		catalog.KeyArea:         "72",
		catalog.KeyDistrict:     "Печерськ",
		catalog.KeyStreet:       "вул. Лесі Українки",
		catalog.KeyComplexName:  "ЖК Сонячний",
		catalog.KeyObjectStatus: "новобудова",
		catalog.KeyFeatures:     "панорамні вікна, паркінг",
		catalog.KeyGoal:         "Швидкий продаж",
		catalog.KeyVariations:   "2",
	}}

	system, user := BuildPrompt(req)

	if system == "" {
		t.Fatal("system prompt is empty")
	}
	for _, want := range []string{
		"Згенеруй текст для допису в Facebook",
		"Допис про квартира (2 кімнат) площею 72 м² в районі Печерськ.",
		"Мета: Швидкий продаж",
		"Кількість варіантів: 2",
		"Мова: українська",
		"Ключові особливості: панорамні вікна, паркінг.",
		"Статус об'єкта: новобудова.",
		"ЖК: ЖК Сонячний.",
		"Вулиця: вул. Лесі Українки.",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestBuildPromptStudioRooms(t *testing.T) {
	req := models.GenerationRequest{Answers: map[string]string{
		catalog.KeyPropertyType: "квартира",
		catalog.KeyRooms:        "Студія",
	}}
	_, user := BuildPrompt(req)
	if !strings.Contains(user, "квартира (Студія)") {
		t.Errorf("expected studio without room count suffix, got:\n%s", user)
	}
	if strings.Contains(user, "Студія кімнат") {
		t.Errorf("studio must not be formatted as a room count:\n%s", user)
	}
}

func TestBuildPromptDefaults(t *testing.T) {
	_, user := BuildPrompt(models.GenerationRequest{Answers: map[string]string{}})

	for _, want := range []string{
		"в Instagram",
		"Допис про нерухомість.",
		"Мета: Продемонструвати якість та деталі",
		"Кількість варіантів: 1",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing default %q:\n%s", want, user)
		}
	}
}

func TestBuildPromptSkippedSentinelTreatedAsMissing(t *testing.T) {
	req := models.GenerationRequest{Answers: map[string]string{
		catalog.KeyPropertyType: "будинок",
		catalog.KeyArea:         models.SkippedSentinel,
		catalog.KeyDistrict:     models.SkippedSentinel,
		catalog.KeyStreet:       models.SkippedSentinel,
		catalog.KeyFeatures:     models.SkippedSentinel,
	}}
	_, user := BuildPrompt(req)

	if strings.Contains(user, models.SkippedSentinel) {
		t.Errorf("sentinel leaked into prompt:\n%s", user)
	}
	if strings.Contains(user, "площею") || strings.Contains(user, "в районі") || strings.Contains(user, "Вулиця") {
		t.Errorf("skipped fields must be omitted:\n%s", user)
	}
	if !strings.Contains(user, "Допис про будинок.") {
		t.Errorf("expected bare topic, got:\n%s", user)
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	req := models.GenerationRequest{Answers: map[string]string{
		catalog.KeyPropertyType: "таунхаус",
		catalog.KeyFeatures:     "тераса",
		catalog.KeyStreet:       "Садова",
	}}

	sys1, user1 := BuildPrompt(req)
	sys2, user2 := BuildPrompt(req)
	if sys1 != sys2 || user1 != user2 {
		t.Error("BuildPrompt is not deterministic for identical input")
	}
}

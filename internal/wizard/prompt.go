package wizard

import (
	"fmt"
	"strings"

	"github.com/Somati-x/stroyhub-bot/internal/catalog"
	"github.com/Somati-x/stroyhub-bot/internal/models"
)

// Prompt construction defaults. Only the property type, the topic's core noun
// phrase, has a hardcoded fallback; every other missing answer is either
// substituted with a generic default or left out of the brief.
const (
	defaultPropertyType = "нерухомість"
	defaultPlatform     = "Instagram"
	defaultGoal         = "Продемонструвати якість та деталі"
	defaultVariations   = "1"
)

const systemPrompt = `Ти — досвідчений SMM-стратег агентства нерухомості. Ти пишеш дописи для соцмереж українською мовою: живо, конкретно, без канцеляризмів, з доречними емодзі та закликом до дії наприкінці. Кожен варіант тексту починай окремим рядком-заголовком у форматі «## Варіант N».`

// BuildPrompt maps the collected answers to a (system prompt, user prompt)
// pair for the generation request. It is deterministic and performs no I/O;
// missing answers and skip sentinels never cause a failure.
func BuildPrompt(req models.GenerationRequest) (string, string) {
	answers := req.Answers

	platform := answerOr(answers, catalog.KeyPlatform, defaultPlatform)
	goal := answerOr(answers, catalog.KeyGoal, defaultGoal)
	variations := answerOr(answers, catalog.KeyVariations, defaultVariations)

	topicParts := []string{fmt.Sprintf("Допис про %s", answerOr(answers, catalog.KeyPropertyType, defaultPropertyType))}
	if rooms := answerOr(answers, catalog.KeyRooms, ""); rooms != "" {
		if rooms == "Студія" || rooms == "4+" {
			topicParts = append(topicParts, fmt.Sprintf("(%s)", rooms))
		} else {
			topicParts = append(topicParts, fmt.Sprintf("(%s кімнат)", rooms))
		}
	}
	if area := answerOr(answers, catalog.KeyArea, ""); area != "" {
		topicParts = append(topicParts, fmt.Sprintf("площею %s м²", area))
	}
	if district := answerOr(answers, catalog.KeyDistrict, ""); district != "" {
		topicParts = append(topicParts, fmt.Sprintf("в районі %s", district))
	}
	topic := strings.Join(topicParts, " ") + "."

	var details []string
	if features := answerOr(answers, catalog.KeyFeatures, ""); features != "" {
		details = append(details, fmt.Sprintf("Ключові особливості: %s.", features))
	}
	if status := answerOr(answers, catalog.KeyObjectStatus, ""); status != "" {
		details = append(details, fmt.Sprintf("Статус об'єкта: %s.", status))
	}
	if complexName := answerOr(answers, catalog.KeyComplexName, ""); complexName != "" {
		details = append(details, fmt.Sprintf("ЖК: %s.", complexName))
	}
	if street := answerOr(answers, catalog.KeyStreet, ""); street != "" {
		details = append(details, fmt.Sprintf("Вулиця: %s.", street))
	}

	userPromptParts := []string{
		fmt.Sprintf("Згенеруй текст для допису в %s на тему: %s", platform, topic),
		fmt.Sprintf("Мета: %s", goal),
		fmt.Sprintf("Кількість варіантів: %s", variations),
		"Мова: українська",
	}
	if len(details) > 0 {
		userPromptParts = append(userPromptParts, strings.Join(details, " "))
	}

	return systemPrompt, strings.Join(userPromptParts, "\n")
}

// answerOr returns the stored answer for key, or fallback when the key is
// absent, empty, or holds the skip sentinel.
func answerOr(answers map[string]string, key, fallback string) string {
	value := strings.TrimSpace(answers[key])
	if value == "" || value == models.SkippedSentinel {
		return fallback
	}
	return value
}

package catalog

// Step keys shared with the prompt builder.
const (
	KeyPlatform     = "platform"
	KeyPropertyType = "propertyType"
	KeyRooms        = "rooms"
	KeyArea         = "area"
	KeyDistrict     = "district"
	KeyStreet       = "street"
	KeyComplexName  = "complexName"
	KeyObjectStatus = "objectStatus"
	KeyFeatures     = "features"
	KeyGoal         = "goal"
	KeyVariations   = "variations"
)

// Default returns the production question sequence for real-estate posts.
func Default() *Catalog {
	c, err := New([]Step{
		{
			Key:     KeyPlatform,
			Label:   "Соцмережа",
			Kind:    KindChoice,
			Prompt:  "Для якої соцмережі готуємо допис?",
			Options: []string{"Instagram", "Facebook", "Telegram"},
		},
		{
			Key:     KeyPropertyType,
			Label:   "Тип нерухомості",
			Kind:    KindChoice,
			Prompt:  "Який тип нерухомості?",
			Options: []string{"квартира", "будинок", "таунхаус", "комерційна нерухомість"},
		},
		{
			Key:     KeyRooms,
			Label:   "Кімнати",
			Kind:    KindChoice,
			Prompt:  "Скільки кімнат?",
			Options: []string{"Студія", "1", "2", "3", "4+"},
		},
		{
			Key:    KeyArea,
			Label:  "Площа",
			Kind:   KindFreeText,
			Prompt: "Яка площа у м²? Напишіть число або натисніть «Пропустити».",
		},
		{
			Key:    KeyDistrict,
			Label:  "Район",
			Kind:   KindFreeText,
			Prompt: "У якому районі розташований об'єкт?",
		},
		{
			Key:    KeyStreet,
			Label:  "Вулиця",
			Kind:   KindFreeText,
			Prompt: "На якій вулиці? Можна пропустити, якщо не хочете вказувати.",
		},
		{
			Key:    KeyComplexName,
			Label:  "ЖК",
			Kind:   KindFreeText,
			Prompt: "Назва житлового комплексу (якщо є)?",
		},
		{
			Key:     KeyObjectStatus,
			Label:   "Статус об'єкта",
			Kind:    KindChoice,
			Prompt:  "Який статус об'єкта?",
			Options: []string{"новобудова", "вторинний ринок", "зданий в експлуатацію"},
		},
		{
			Key:    KeyFeatures,
			Label:  "Особливості",
			Kind:   KindFreeText,
			Prompt: "Ключові особливості об'єкта (ремонт, вид, паркінг тощо)?",
		},
		{
			Key:     KeyGoal,
			Label:   "Мета допису",
			Kind:    KindChoice,
			Prompt:  "Яка мета допису?",
			Options: []string{"Продемонструвати якість та деталі", "Швидкий продаж", "Залучити підписників"},
		},
		{
			Key:     KeyVariations,
			Label:   "Кількість варіантів",
			Kind:    KindChoice,
			Prompt:  "Скільки варіантів тексту згенерувати?",
			Options: []string{"1", "2", "3"},
		},
	})
	if err != nil {
		// The default catalog is a compile-time constant in spirit; a
		// validation failure here is a programming error.
		panic(err)
	}
	return c
}

// Package quests — catalog.go содержит каталог сценок.
// Каталог — контент, а не код: движок не делает предположений о конкретных
// сценках, только о форме (три варианта, у каждого исход и эффект).
// Кривая запись каталога — дефект контента, не повод падать в рантайме.
package quests

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Catalog — все сценки. ID должны быть уникальны и стабильны:
// они уезжают в callback data кнопок.
var Catalog = []Encounter{
	{
		ID:          1,
		Title:       "Сапог великана",
		Description: "Вы очнулись размером с монетку у сапога великана. Он усмехается: «Крошка. Развлеки меня».",
		Options: []Option{
			{Label: "🧽 Начистить сапог до блеска", Outcome: "Вы честно полируете, но великан забывает про вас и делает шаг. Темнота.", Effect: EffectMute},
			{Label: "📣 Пропищать комплимент", Outcome: "Ваш писк его умиляет. Великан, хохоча, кидает вам горсть монет.", Effect: EffectCoins},
			{Label: "🪨 Спрятаться за камешком", Outcome: "Он находит вас сразу. «Скучно». Уходит, не оборачиваясь.", Effect: EffectNone},
		},
	},
	{
		ID:          2,
		Title:       "Сокровищница короля крокодилов",
		Description: "Вас втащили в сокровищницу короля крокодилов. «Нищий? Попроси золота как следует».",
		Options: []Option{
			{Label: "💃 Станцевать для короля", Outcome: "Танец его не впечатляет. «Выведите», — машет лапой король.", Effect: EffectNone},
			{Label: "👃 Понюхать королевскую подушку", Outcome: "В подушке спрятана ловушка с перцем. Вы чихаете так, что вас выносят.", Effect: EffectMute},
			{Label: "🧎 Поклониться в пол", Outcome: "«Хороший поклон приносит проценты», — король отсыпает монет.", Effect: EffectCoins},
		},
	},
	{
		ID:          3,
		Title:       "Таверна оборотней",
		Description: "Вы заходите в таверну, полную оборотней. «Новенький? Покажи, чего стоишь».",
		Options: []Option{
			{Label: "🍺 Выпить из общего ведра", Outcome: "Вы выпили. Таверна ревёт от смеха, но на чай никто не даёт.", Effect: EffectNone},
			{Label: "🐶 Завыть на люстру", Outcome: "Вы воете, сбиваете лапой бочку пива. «Неуклюжий щенок!» Вас выставляют.", Effect: EffectMute},
			{Label: "🛏 Прибрать их логово", Outcome: "Вы наводите идеальный порядок. Один из оборотней кидает вам кошель.", Effect: EffectCoins},
		},
	},
	{
		ID:          4,
		Title:       "Рынок минотавра",
		Description: "Торговец-минотавр возвышается над прилавком: «Я торгую за службу, не за монеты. Удиви меня».",
		Options: []Option{
			{Label: "📦 Поднять ящик в десять раз больше себя", Outcome: "Спина трещит, но ящик сдвинут. «Хм. Сильнее, чем выглядишь». Платит.", Effect: EffectCoins},
			{Label: "🐂 Подёргать его за кольцо в носу", Outcome: "Минотавр медленно поворачивается. Очнулись вы не скоро.", Effect: EffectMute},
			{Label: "💬 Похвалить его рога", Outcome: "Он фыркает: «Лесть? Дёшево». Отворачивается.", Effect: EffectNone},
		},
	},
	{
		ID:          5,
		Title:       "Трон тёмного владыки",
		Description: "Тёмный владыка смотрит с трона. «Хочешь моей милости? Развлеки».",
		Options: []Option{
			{Label: "🧎 Залаять на четвереньках", Outcome: "Вы лаете. Он бросает кость... вам в лоб.", Effect: EffectMute},
			{Label: "🎭 Исполнить драматический монолог", Outcome: "Монолог неожиданно хорош. Владыка хмыкает: «В тебе что-то есть». Платит.", Effect: EffectCoins},
			{Label: "👂 Похвалить его военные байки", Outcome: "Вы льстите. Он зевает: «Слышал и получше».", Effect: EffectNone},
		},
	},
	{
		ID:          6,
		Title:       "Логово дракона",
		Description: "Пахучий красный дракон перегородил тропу: «Пройдёшь, если выдержишь моё... амбре».",
		Options: []Option{
			{Label: "🐽 Вдохнуть поглубже и похвалить", Outcome: "Вы вдыхаете слишком глубоко и оседаете на тропу без чувств.", Effect: EffectMute},
			{Label: "🔥 Помахать на себя крылом", Outcome: "Вы обмахиваетесь с видом ценителя. Дракон доволен и щедр.", Effect: EffectCoins},
			{Label: "🤢 Задержать дыхание и бежать", Outcome: "Вы бежите, спотыкаетесь о собственный хвост. Дракон фыркает.", Effect: EffectNone},
		},
	},
	{
		ID:          7,
		Title:       "Арена гладиаторов",
		Description: "Вас вытолкнули на арену к тигру-гладиатору. «Посмотрим, на что ты годен».",
		Options: []Option{
			{Label: "🗡 Вызвать его на бой", Outcome: "Он поднимает вас одной лапой. Трибуны смеются очень долго.", Effect: EffectMute},
			{Label: "😔 Лечь и сдаться", Outcome: "Ваша капитуляция так жалка, что он смеётся и кидает мешочек монет.", Effect: EffectCoins},
			{Label: "📢 Выкрикнуть оскорбление", Outcome: "Оскорбление не долетает. Он демонстративно зевает.", Effect: EffectNone},
		},
	},
	{
		ID:          8,
		Title:       "Конюшня кентавра",
		Description: "Громадный кентавр-конюх поднимает вас за шиворот: «Помощник? Посмотрим».",
		Options: []Option{
			{Label: "🪣 Вычистить стойла", Outcome: "Вы чистите до вечера. Кентавр про вас просто забывает.", Effect: EffectNone},
			{Label: "🐴 Попробовать его оседлать", Outcome: "Полёт был коротким, приземление — громким.", Effect: EffectMute},
			{Label: "🧴 Расчесать ему хвост", Outcome: "Вы расчёсываете с душой. Кентавр растроган и платит.", Effect: EffectCoins},
		},
	},
	{
		ID:          9,
		Title:       "Орк-налоговик",
		Description: "Мускулистый орк ставит на стол мешок золота: «Хочешь долю? Докажи, что заслужил, шкет».",
		Options: []Option{
			{Label: "🏋️ Поднять его мешок", Outcome: "Мешок не двигается. Орк ржёт: «Слабак».", Effect: EffectNone},
			{Label: "💬 Признать себя никчёмным", Outcome: "«Правильный ответ». Орк фыркает и отсыпает из жалости.", Effect: EffectCoins},
			{Label: "👢 Целовать его сапоги", Outcome: "Орк топает ногой. Пол оказывается ближе, чем вы думали.", Effect: EffectMute},
		},
	},
	{
		ID:          10,
		Title:       "Подвал ростовщика",
		Description: "Поздний вечер. Енот-ростовщик зовёт вас в подвал и поправляет галстук: «Опять ты? Без монет, с долгами».",
		Options: []Option{
			{Label: "💳 Предъявить свою кредитную историю", Outcome: "Он листает записи: «Впечатляющие провалы. За честность — плачу».", Effect: EffectCoins},
			{Label: "🪑 Молча сесть в угол позора", Outcome: "Вы сидите молча полчаса. «Скучно», — констатирует енот.", Effect: EffectNone},
			{Label: "🧹 Прибраться в его подвале", Outcome: "Вы задеваете антикварный колокольчик. «ВОН!»", Effect: EffectMute},
		},
	},
}

// ByID возвращает сценку по ID или nil.
func ByID(id int) *Encounter {
	for i := range Catalog {
		if Catalog[i].ID == id {
			return &Catalog[i]
		}
	}
	return nil
}

// ValidateCatalog проверяет форму каталога: уникальные ID, ровно три
// варианта, непустые исходы, известные эффекты. Кривые записи логируются
// как дефект контента; бот продолжает работать с тем, что есть.
func ValidateCatalog() error {
	seen := make(map[int]struct{}, len(Catalog))
	for i := range Catalog {
		e := &Catalog[i]
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("сценка %d: дублирующийся ID", e.ID)
		}
		seen[e.ID] = struct{}{}

		if len(e.Options) != 3 {
			return fmt.Errorf("сценка %d: вариантов %d, должно быть 3", e.ID, len(e.Options))
		}
		for j, opt := range e.Options {
			if opt.Label == "" || opt.Outcome == "" {
				return fmt.Errorf("сценка %d, вариант %d: пустой текст", e.ID, j)
			}
			switch opt.Effect {
			case EffectCoins, EffectMute, EffectNone:
			default:
				return fmt.Errorf("сценка %d, вариант %d: неизвестный эффект %q", e.ID, j, opt.Effect)
			}
		}
	}
	return nil
}

// MustValidateCatalog проверяет каталог при старте и логирует дефекты.
func MustValidateCatalog() {
	if err := ValidateCatalog(); err != nil {
		// Дефект контента, не причина падать — просто громко жалуемся
		log.WithError(err).Error("Каталог квестов содержит дефекты")
	}
}

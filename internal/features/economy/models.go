// Package economy управляет виртуальной валютой «монеты».
// models.go описывает транзакции и результаты операций движка.
package economy

import "time"

// Transaction — неизменяемая запись о событии, повлиявшем на баланс.
// Пишется для аудита; движок НИКОГДА не читает её для принятия решений —
// решения принимаются только по состоянию счёта.
type Transaction struct {
	ID           int64     `db:"id"`             // ID транзакции
	UserID       int64     `db:"user_id"`        // Чей баланс изменился
	Kind         string    `db:"kind"`           // Тип события (см. константы ниже)
	Amount       int64     `db:"amount"`         // Сумма со знаком: + начисление, - списание
	TargetUserID *int64    `db:"target_user_id"` // Контрагент (для переводов), nil для системных
	CreatedAt    time.Time `db:"created_at"`     // Время события
}

// Допустимые типы транзакций
const (
	TxKindDailyClaim     = "daily_claim"     // Ежедневное начисление за активность
	TxKindStickerPenalty = "sticker_penalty" // Налог на стикер
	TxKindSend           = "send"            // Исходящий перевод (отрицательная сумма)
	TxKindReceive        = "receive"         // Входящий перевод (положительная сумма)
	TxKindQuestReward    = "quest_reward"    // Награда за квест
	TxKindAdminGive      = "admin_give"      // Выдача админом
	TxKindAdminTake      = "admin_take"      // Изъятие админом
)

// ClaimResult — исход попытки ежедневного начисления.
type ClaimResult struct {
	AlreadyClaimed bool  // true — сегодня уже начисляли, мутаций не было
	Amount         int64 // Сколько начислено
	NewBalance     int64 // Баланс после начисления
}

// TaxResult — исход применения налога на стикер.
type TaxResult struct {
	Charged    bool  // false — баланс нулевой, списания не было (контент удаляется)
	NewBalance int64 // Баланс после списания
}

// TransferResult — балансы сторон после успешного перевода.
type TransferResult struct {
	FromBalance int64
	ToBalance   int64
}

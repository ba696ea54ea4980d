// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Бизнес-исходы (не хватает монет, уже получал, иммунитет) — это обычные
// возвращаемые значения, а не исключения: они происходят постоянно.
package common

import "errors"

// Ошибки валидации (некорректный ввод пользователя)
var (
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrSelfTransfer — попытка перевести монеты самому себе
	ErrSelfTransfer = errors.New("нельзя переводить монеты самому себе")
	// ErrSelfRequest — попытка запросить монеты у самого себя
	ErrSelfRequest = errors.New("нельзя запрашивать монеты у самого себя")
)

// Ошибки «не найдено» — штатные ситуации, не сбои
var (
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrRequestNotFound — запрос уже разрешён, истёк или не существовал
	ErrRequestNotFound = errors.New("запрос больше не существует")
)

// Отказы по правилам экономики
var (
	// ErrInsufficientBalance — недостаточно монет на счёте
	ErrInsufficientBalance = errors.New("недостаточно монет на счёте")
	// ErrNotYourRequest — подтвердить или отклонить запрос может только адресат
	ErrNotYourRequest = errors.New("этот запрос адресован не вам")
	// ErrTargetImmune — цель входит в топ по богатству и неприкосновенна
	ErrTargetImmune = errors.New("пользователь в топе по богатству и неприкосновенен")
	// ErrNotRicher — чтобы сесть на пользователя, нужно быть богаче него
	ErrNotRicher = errors.New("нужно иметь больше монет, чем у цели")
	// ErrAlreadyPlayed — квест уже пройден сегодня
	ErrAlreadyPlayed = errors.New("квест уже пройден сегодня")
	// ErrNotAdmin — команда доступна только администраторам
	ErrNotAdmin = errors.New("у вас нет прав администратора")
)

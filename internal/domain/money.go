package domain

import "fmt"

// Money описывает сумму в минимальных единицах валюты.
// Целочисленное представление даёт точную арифметику цен.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Mul возвращает сумму, умноженную на целый множитель.
func (m Money) Mul(n int64) Money {
	return Money{Amount: m.Amount * n, Currency: m.Currency}
}

// String форматирует сумму с двумя знаками после разделителя.
func (m Money) String() string {
	amount := m.Amount
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

package followup

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"feedback-platform/internal/domain"
)

// fakeStore повторяет семантику условной записи: чтение и запись
// атомарны по отдельности, между ними другой писатель может успеть
// обновить объект, и тогда запись отклоняется конфликтом.
type fakeStore struct {
	mu         sync.Mutex
	content    string
	version    int
	failWrites int
	readErr    error
	writeErr   error
}

func (f *fakeStore) Read(_ context.Context, _ string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", "", f.readErr
	}
	if f.version == 0 {
		return "", "", nil
	}
	return f.content, strconv.Itoa(f.version), nil
}

func (f *fakeStore) ConditionalWrite(_ context.Context, _, content, expected string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return false, f.writeErr
	}
	if f.failWrites > 0 {
		f.failWrites--
		return false, nil
	}
	current := ""
	if f.version > 0 {
		current = strconv.Itoa(f.version)
	}
	if expected != current {
		return false, nil
	}
	f.content = content
	f.version++
	return true, nil
}

func testEvent() domain.FollowUpEvent {
	return domain.FollowUpEvent{
		FeedbackID:   "f-1",
		UserName:     "Боб",
		Comments:     "медленная поддержка",
		Rating:       2,
		CompanyID:    7,
		CompanyName:  "Acme",
		Subscription: "Premium",
	}
}

func newTestAppender(store domain.LedgerStore, maxAttempts int) *Appender {
	return NewAppender(store, Config{MaxAttempts: maxAttempts, RetryBackoff: time.Millisecond}, zerolog.Nop())
}

func TestLedgerKey(t *testing.T) {
	if got := LedgerKey(7); got != "feedback-7.csv" {
		t.Fatalf("ожидали feedback-7.csv, получили %s", got)
	}
}

func TestAppendWritesHeaderOnFirstRow(t *testing.T) {
	store := &fakeStore{}
	appender := newTestAppender(store, 3)

	if err := appender.Append(context.Background(), testEvent()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	lines := strings.Split(strings.TrimRight(store.content, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("ожидали заголовок и одну строку, получили %d", len(lines))
	}
	if lines[0] != "UserName;Comments;Rating;Company;Subscription" {
		t.Fatalf("неверный заголовок: %s", lines[0])
	}
	if lines[1] != "Боб;медленная поддержка;2;Acme;Premium" {
		t.Fatalf("неверная строка данных: %s", lines[1])
	}
}

func TestAppendExistingLedgerSkipsHeader(t *testing.T) {
	store := &fakeStore{content: "UserName;Comments;Rating;Company;Subscription\nстарая;строка;1;Acme;Premium\n", version: 1}
	appender := newTestAppender(store, 3)

	if err := appender.Append(context.Background(), testEvent()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	lines := strings.Split(strings.TrimRight(store.content, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("ожидали заголовок и две строки, получили %d", len(lines))
	}
	if strings.Count(store.content, "UserName;") != 1 {
		t.Fatalf("заголовок должен быть ровно один")
	}
}

func TestAppendDuplicateEventsKeepsBoth(t *testing.T) {
	store := &fakeStore{}
	appender := newTestAppender(store, 3)

	event := testEvent()
	for i := 0; i < 2; i++ {
		if err := appender.Append(context.Background(), event); err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
	}
	lines := strings.Split(strings.TrimRight(store.content, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("дубликат доставки должен дать вторую строку, получили %d", len(lines))
	}
}

func TestAppendRetriesOnConflict(t *testing.T) {
	store := &fakeStore{failWrites: 2}
	appender := newTestAppender(store, 5)

	if err := appender.Append(context.Background(), testEvent()); err != nil {
		t.Fatalf("не ожидали ошибку после повторов: %v", err)
	}
	if store.version != 1 {
		t.Fatalf("ожидали одну успешную запись")
	}
}

func TestAppendContentionExhaustsBudget(t *testing.T) {
	store := &fakeStore{failWrites: 1 << 30}
	appender := newTestAppender(store, 3)

	err := appender.Append(context.Background(), testEvent())
	if !errors.Is(err, domain.ErrLedgerContention) {
		t.Fatalf("ожидали ErrLedgerContention, получили %v", err)
	}
	if store.version != 0 {
		t.Fatalf("при исчерпании бюджета журнал не должен меняться")
	}
}

func TestAppendReadError(t *testing.T) {
	readErr := errors.New("store down")
	appender := newTestAppender(&fakeStore{readErr: readErr}, 3)

	if err := appender.Append(context.Background(), testEvent()); !errors.Is(err, readErr) {
		t.Fatalf("ожидали ошибку чтения, получили %v", err)
	}
}

// Стресс-тест: N конкурентных аппендеров над одним журналом. Конфликты
// возникают естественно из чередования чтения и записи; после завершения
// журнал содержит ровно один заголовок и N строк по пять полей.
func TestAppendConcurrentWritersLoseNothing(t *testing.T) {
	const writers = 20
	// Десяток искусственных конфликтов сверх естественных от чередования.
	store := &fakeStore{failWrites: 10}
	appender := NewAppender(store, Config{MaxAttempts: 200, RetryBackoff: time.Millisecond}, zerolog.Nop())

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			event := testEvent()
			event.UserName = "писатель-" + strconv.Itoa(n)
			errs <- appender.Append(context.Background(), event)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
	}

	lines := strings.Split(strings.TrimRight(store.content, "\n"), "\n")
	if len(lines) != writers+1 {
		t.Fatalf("ожидали заголовок и %d строк, получили %d", writers, len(lines))
	}
	if lines[0] != "UserName;Comments;Rating;Company;Subscription" {
		t.Fatalf("первой строкой должен идти заголовок")
	}
	for _, line := range lines {
		if fields := strings.Split(line, ";"); len(fields) != 5 {
			t.Fatalf("каждая строка должна иметь пять полей: %q", line)
		}
	}
}

func TestFormatRowEscaping(t *testing.T) {
	event := testEvent()
	event.UserName = "Ева;Смит"
	event.Comments = "первая строка\nвторая;третья\r\nконец"

	row := FormatRow(event)
	if strings.ContainsAny(row, "\n\r") {
		t.Fatalf("строка журнала не должна содержать переводов строк: %q", row)
	}
	fields := strings.Split(row, ";")
	if len(fields) != 5 {
		t.Fatalf("ожидали пять полей, получили %d: %q", len(fields), row)
	}
	if fields[0] != "Ева,Смит" {
		t.Fatalf("разделитель в поле должен заменяться запятой: %q", fields[0])
	}
	if fields[1] != "первая строка вторая,третья конец" {
		t.Fatalf("переводы строк должны заменяться пробелом: %q", fields[1])
	}
}

package data

import "errors"

// ErrNotFound возвращается, когда документ, бэкап, тема или файл темы отсутствуют.
var ErrNotFound = errors.New("not found")

// ErrInvalidArgument возвращается для неверного имени бэкапа или некорректного документа.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrForbidden возвращается, когда путь к файлу темы выходит за пределы ее директории.
var ErrForbidden = errors.New("forbidden")

// ErrStorage оборачивает любые ошибки ввода-вывода хранилища.
var ErrStorage = errors.New("storage failure")

// storageError оборачивает err так, что errors.Is(err, ErrStorage) == true,
// сохраняя исходную причину.
func storageError(op string, err error) error {
	return &wrappedStorageError{op: op, err: err}
}

type wrappedStorageError struct {
	op  string
	err error
}

func (e *wrappedStorageError) Error() string {
	return e.op + ": " + ErrStorage.Error() + ": " + e.err.Error()
}

func (e *wrappedStorageError) Unwrap() []error {
	return []error{ErrStorage, e.err}
}

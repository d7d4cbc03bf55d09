package pipeline

import "fmt"

// ValidationError некорректный ввод, до внешних вызовов дело не доходит
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("поле %s обязательно", e.Field)
}

// ProviderError ошибка сервиса синтеза речи
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ошибка синтеза речи: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// TranscodeError ошибка перекодирования аудио
type TranscodeError struct {
	Err error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("ошибка перекодирования: %v", e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// FilesystemError ошибка работы с каталогом аудио
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("ошибка файловой системы (%s): %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

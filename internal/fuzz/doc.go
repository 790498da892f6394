// Package fuzztests houses Go fuzz harnesses for the linting pipeline
// (source -> markup parser -> linters -> corrector). Its goal is to smoke test
// robustness and guard against panics, hangs and out-of-range offenses on
// arbitrary templates.
//
// Назначение: загружать байты в FileSet и прогонять их через парсер разметки
// и движок линтеров с автокоррекцией.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/markup, internal/lint,
// internal/linters, internal/driver, internal/testkit.

package fuzztests

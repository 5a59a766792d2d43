// Package api — общие помощники HTTP-поверхности воркера.
//
// Включает:
//   - response.go   — единый формат JSON-ответов и ошибок
//   - middleware.go — логирование запросов и recovery после паник
package api

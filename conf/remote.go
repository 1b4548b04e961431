package conf

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"github.com/txix-open/isp-kit/rc/schema"
	"github.com/txix-open/jsonschema"
)

const (
	defaultJournalCapacity = 1024
)

// nolint:gochecknoinits
func init() {
	schema.CustomGenerators.Register("logLevel", func(field reflect.StructField, t *jsonschema.Schema) {
		t.Type = "string"
		t.Enum = []interface{}{"debug", "info", "error", "fatal"}
	})
}

type Remote struct {
	Redis       *Redis    `schema:"Настройки Redis,используются для распределённого учёта частоты запросов, без Redis учёт ведётся в памяти процесса"`
	Http        Http      `schema:"Настройки HTTP"`
	Logging     Logging   `schema:"Настройки логирования"`
	Guard       Guard     `schema:"Настройки проверки изображений"`
	RateLimit   RateLimit `schema:"Настройки ограничения частоты запросов"`
	Probe       Probe     `schema:"Настройки проверки отрисовки"`
	Caching     Caching   `schema:"Настройки кеширования"`
	Journal     Journal   `schema:"Настройки журнала отказов"`
	AdminSecret string    `schema:"Секрет для доступа к журналу отказов,если не задан, журнал недоступен"`

	EnableClientRequestIdForwarding bool `schema:"Проксирование клиентского x-request-id"`
}

type Http struct {
	MaxRequestBodySizeInMb int64 `valid:"required" schema:"Максимальная длинна тела запроса,в мегабайтах"`
}

type Logging struct {
	LogLevel                        log.Level `schemaGen:"logLevel" schema:"Уровень логирования,логирование запросов осуществляется на уровне debug"`
	RequestLogEnable                bool      `schema:"Включить логирование запросов"`
	BodyLogEnable                   bool      `schema:"Включить логирование тел запросов и ответов,должно быть включено логирование запросов"`
	SkipBodyLoggingEndpointPrefixes []string  `valid:"omitempty" schema:"Префиксы путей для отключения логирования тел"`
}

type Guard struct {
	MaxImageSizeInKb int64    `valid:"required" schema:"Максимальный размер изображения,в килобайтах, после декодирования"`
	AllowedFormats   []string `schema:"Допустимые форматы,по умолчанию: png, jpeg, gif, webp"`
	MaxDimensionInPx int      `valid:"required" schema:"Максимальный размер стороны изображения,в пикселях"`
}

func (g Guard) GetAllowedFormats() []string {
	if len(g.AllowedFormats) == 0 {
		return []string{"png", "jpeg", "gif", "webp"}
	}
	return g.AllowedFormats
}

type RateLimit struct {
	WindowInSec       int `valid:"required" schema:"Окно учёта,в секундах"`
	RequestsPerWindow int `valid:"required" schema:"Запросов в окне,на одного пользователя"`
}

type Probe struct {
	MaxConcurrent int `valid:"required,range(1|1024)" schema:"Максимум одновременных проверок"`
	TimeoutInMs   int `valid:"required" schema:"Таймаут одной проверки,в миллисекундах"`
}

type Caching struct {
	RenderedImageInSec  int `valid:"required" schema:"Время хранения проверенного изображения,в секундах"`
	ViewerIdentityInSec int `valid:"required" schema:"Время кеширования данных пользователя,в секундах"`
}

type Journal struct {
	Capacity int `schema:"Количество последних отказов в памяти,по умолчанию: 1024"`
}

func (j Journal) GetCapacity() int {
	if j.Capacity <= 0 {
		return defaultJournalCapacity
	}
	return j.Capacity
}

type Redis struct {
	Address  string         `schema:"Адрес,обязателено, если sentinel не указан"`
	Username string         `schema:"Имя пользовтаеля"`
	Password string         `schema:"Пароль"`
	Sentinel *RedisSentinel `schema:"Настройки sentinel,обязательно, если address не указан"`
}

type RedisSentinel struct {
	Addresses  []string `valid:"required" schema:"Адреса нод в кластере"`
	MasterName string   `valid:"required" schema:"Имя мастера"`
	Username   string   `schema:"Имя пользовтаеля в sentinel"`
	Password   string   `schema:"Пароль в sentinel"`
}

func (r Remote) Validate() error {
	if r.Redis != nil && r.Redis.Sentinel == nil && r.Redis.Address == "" {
		return errors.New("invalid redis config. sentinel or address are required")
	}
	return nil
}

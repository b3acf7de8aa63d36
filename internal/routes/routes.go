// routes — статическая таблица публичных путей сайта Blastify.
//
// Таблица собирается один раз при старте и дальше только читается:
// гейт получает её через конструктор, а не через глобальные переменные.
package routes

import "strings"

// Table — неизменяемая классификация путей.
type Table struct {
	exact         map[string]struct{}
	prefixes      []string
	apiPublic     []string
	authPages     []string
	apiPrefix     string
	signInPath    string
	dashboardPath string
}

// Options — исходные данные для таблицы. Срезы копируются.
type Options struct {
	Exact         []string
	Prefixes      []string
	APIPublic     []string
	AuthPages     []string
	APIPrefix     string
	SignInPath    string
	DashboardPath string
}

// DefaultOptions — маршруты маркетингового сайта и auth-страниц.
func DefaultOptions() Options {
	return Options{
		Exact: []string{
			"/",
			"/features",
			"/pricing",
			"/contact",
			"/about",
			"/privacy-policy",
			"/terms-of-service",
			"/faq",
		},
		Prefixes: []string{
			"/signin",
			"/signup",
			"/forgot-password",
			"/reset-password",
			"/verify-email",
		},
		APIPublic: []string{
			"/api/auth/login",
			"/api/auth/register",
			"/api/auth/refresh-token",
			"/api/auth/forgot-password",
			"/api/auth/reset-password",
			"/api/auth/verify-email",
		},
		AuthPages: []string{
			"/signin",
			"/signup",
			"/forgot-password",
			"/reset-password",
		},
		APIPrefix:     "/api",
		SignInPath:    "/signin",
		DashboardPath: "/dashboard",
	}
}

// Default — таблица с DefaultOptions.
func Default() *Table { return New(DefaultOptions()) }

// New строит таблицу.
func New(o Options) *Table {
	t := &Table{
		exact:         make(map[string]struct{}, len(o.Exact)),
		prefixes:      append([]string(nil), o.Prefixes...),
		apiPublic:     append([]string(nil), o.APIPublic...),
		authPages:     append([]string(nil), o.AuthPages...),
		apiPrefix:     strings.TrimSuffix(o.APIPrefix, "/"),
		signInPath:    o.SignInPath,
		dashboardPath: o.DashboardPath,
	}

	for _, p := range o.Exact {
		t.exact[p] = struct{}{}
	}

	if t.signInPath == "" {
		t.signInPath = "/signin"
	}
	if t.dashboardPath == "" {
		t.dashboardPath = "/dashboard"
	}

	return t
}

// IsPublic — путь доступен без аутентификации.
func (t *Table) IsPublic(path string) bool {
	if _, ok := t.exact[path]; ok {
		return true
	}

	return hasAnyPrefix(path, t.prefixes) || hasAnyPrefix(path, t.apiPublic)
}

// IsAPI — путь относится к API (отказ отдаётся JSON, а не редиректом).
func (t *Table) IsAPI(path string) bool {
	if t.apiPrefix == "" {
		return false
	}

	return path == t.apiPrefix || strings.HasPrefix(path, t.apiPrefix+"/")
}

// IsAuthPage — страница входа/регистрации/сброса пароля.
func (t *Table) IsAuthPage(path string) bool {
	return hasAnyPrefix(path, t.authPages)
}

func (t *Table) SignInPath() string    { return t.signInPath }
func (t *Table) DashboardPath() string { return t.dashboardPath }

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}

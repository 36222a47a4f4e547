// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package heroku translates the environment variables exported by Heroku
// add-ons into the setting names applications expect.
package heroku

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/z5labs/appconfig"
	"github.com/z5labs/appconfig/config"
	"github.com/z5labs/appconfig/internal/noop"
	"github.com/z5labs/appconfig/internal/slogfield"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Rewrites maps add-on variables onto the setting they provide.
// When several variables target the same setting the last one set wins.
var Rewrites = config.Pairs(
	"DATABASE_URL", "SQLALCHEMY_DATABASE_URI",
	"HEROKU_POSTGRESQL_ORANGE_URL", "SQLALCHEMY_DATABASE_URI",
	"BROKER_URL", "RABBITMQ_URL",
	"REDISTOGO_URL", "REDIS_URL",
	"MONGOLAB_URI", "MONGO_URI",
	"MONGOHQ_URL", "MONGO_URI",
	"CLOUDANT_URL", "COUCHDB_URL",
	"MEMCACHIER_SERVERS", "CACHE_MEMCACHED_SERVERS",
	"MEMCACHIER_USERNAME", "CACHE_MEMCACHED_USERNAME",
	"MEMCACHIER_PASSWORD", "CACHE_MEMCACHED_PASSWORD",
)

// PassThrough lists the add-on variables imported under their own name.
var PassThrough = config.Names(
	"SENTRY_DSN",
	"EXCEPTIONAL_API_KEY",
	"GOOGLE_DOMAIN",
	"MAILGUN_API_KEY",
	"MAILGUN_SMTP_LOGIN",
	"MAILGUN_SMTP_PASSWORD",
	"MAILGUN_SMTP_PORT",
	"MAILGUN_SMTP_SERVER",
	"SENDGRID_USERNAME",
	"SENDGRID_PASSWORD",
	"REDIS_URL",
)

// MissingSettingError occurs when a mail provider is detected but one of
// the settings it requires is absent.
type MissingSettingError struct {
	Key string
}

// Error implements the [builtin.error] interface.
func (e MissingSettingError) Error() string {
	return fmt.Sprintf("missing required setting: %s", e.Key)
}

func (e MissingSettingError) settingKey() string { return e.Key }

// InvalidURLError occurs when a connection URL setting can not be parsed.
// Cause never contains the URL itself.
type InvalidURLError struct {
	Key   string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url in setting %s: %s", e.Key, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidURLError) Unwrap() error {
	return e.Cause
}

func (e InvalidURLError) settingKey() string { return e.Key }

type settingError interface {
	error
	settingKey() string
}

// Option configures [Conventions].
type Option func(*Conventions)

// LogHandler sets the handler for the debug records emitted while adapting.
func LogHandler(h slog.Handler) Option {
	return func(c *Conventions) {
		c.log = slog.New(h)
	}
}

// Conventions is an [appconfig.Adapter] which imports Heroku add-on
// variables and derives the mail, Redis and MongoDB settings from them.
type Conventions struct {
	log *slog.Logger
}

// New returns Heroku [Conventions].
func New(opts ...Option) *Conventions {
	c := &Conventions{
		log: slog.New(noop.LogHandler{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load is [appconfig.Load] with the Heroku [Conventions] registered as
// the last adapter.
func Load(ctx context.Context, name string, opts ...appconfig.Option) (*config.Settings, error) {
	opts = append(opts, appconfig.WithAdapter(New()))
	return appconfig.Load(ctx, name, opts...)
}

// Adapt implements the [appconfig.Adapter] interface.
func (c *Conventions) Adapt(ctx context.Context, environ []string, s *config.Settings) (err error) {
	spanCtx, span := otel.Tracer("appconfig").Start(ctx, "heroku.Conventions.Adapt")
	defer span.End()
	defer func() {
		if err == nil {
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}()

	env := func() []string {
		return environ
	}
	for _, mapping := range []config.EnvMapping{PassThrough, Rewrites} {
		src := config.FromEnv(
			config.Mapping(mapping),
			config.DecodeJSON(false),
			config.Environ(env),
		)
		err = src.Apply(s)
		if err != nil {
			return err
		}
	}

	rules := []struct {
		name  string
		apply func(*config.Settings) ([]string, error)
	}{
		{name: "mail", apply: deriveMail},
		{name: "redis", apply: deriveRedis},
		{name: "mongodb", apply: deriveMongo},
	}
	for _, rule := range rules {
		var derived []string
		derived, err = rule.apply(s)
		if err != nil {
			c.logFailure(spanCtx, rule.name, err)
			return err
		}
		span.SetAttributes(attribute.Bool("heroku."+rule.name, len(derived) > 0))
		if len(derived) == 0 {
			continue
		}
		c.log.DebugContext(
			spanCtx,
			"derived settings",
			slogfield.String("rule", rule.name),
			slogfield.Keys(derived),
		)
	}
	return nil
}

func (c *Conventions) logFailure(ctx context.Context, rule string, err error) {
	attrs := []any{slogfield.String("rule", rule), slogfield.Error(err)}

	var serr settingError
	if errors.As(err, &serr) {
		attrs = append(attrs, slogfield.Key(serr.settingKey()))
	}
	c.log.DebugContext(ctx, "failed to derive settings", attrs...)
}

type copyPair struct {
	dst string
	src string
}

func destinations(pairs []copyPair) []string {
	ks := make([]string, 0, len(pairs))
	for _, p := range pairs {
		ks = append(ks, p.dst)
	}
	return ks
}

var (
	mailgunSMTP = []copyPair{
		{dst: "SMTP_SERVER", src: "MAILGUN_SMTP_SERVER"},
		{dst: "SMTP_PORT", src: "MAILGUN_SMTP_PORT"},
		{dst: "SMTP_LOGIN", src: "MAILGUN_SMTP_LOGIN"},
		{dst: "SMTP_PASSWORD", src: "MAILGUN_SMTP_PASSWORD"},
	}

	sendgridSMTP = []copyPair{
		{dst: "SMTP_LOGIN", src: "SENDGRID_USERNAME"},
		{dst: "SMTP_PASSWORD", src: "SENDGRID_PASSWORD"},
	}

	smtpMail = []copyPair{
		{dst: "MAIL_SERVER", src: "SMTP_SERVER"},
		{dst: "MAIL_PORT", src: "SMTP_PORT"},
		{dst: "MAIL_USE_TLS", src: "SMTP_USE_TLS"},
		{dst: "MAIL_USERNAME", src: "SMTP_LOGIN"},
		{dst: "MAIL_PASSWORD", src: "SMTP_PASSWORD"},
	}
)

func copySettings(s *config.Settings, pairs []copyPair) error {
	for _, p := range pairs {
		v, ok := s.Lookup(p.src)
		if !ok {
			return MissingSettingError{Key: p.src}
		}
		s.Put(p.dst, v)
	}
	return nil
}

// deriveMail prefers Mailgun over SendGrid. It returns the keys it set.
func deriveMail(s *config.Settings) ([]string, error) {
	var derived []string
	switch {
	case s.Has("MAILGUN_SMTP_SERVER"):
		err := copySettings(s, mailgunSMTP)
		if err != nil {
			return nil, err
		}
		derived = destinations(mailgunSMTP)
	case s.Has("SENDGRID_USERNAME"):
		s.Put("SMTP_SERVER", "smtp.sendgrid.net")
		s.Put("SMTP_PORT", 25)
		err := copySettings(s, sendgridSMTP)
		if err != nil {
			return nil, err
		}
		derived = append([]string{"SMTP_SERVER", "SMTP_PORT"}, destinations(sendgridSMTP)...)
	default:
		return nil, nil
	}
	s.Put("SMTP_USE_TLS", true)

	err := copySettings(s, smtpMail)
	if err != nil {
		return nil, err
	}
	derived = append(derived, "SMTP_USE_TLS")
	return append(derived, destinations(smtpMail)...), nil
}

func deriveRedis(s *config.Settings) ([]string, error) {
	u, ok, err := lookupURL(s, "REDIS_URL")
	if !ok || err != nil {
		return nil, err
	}

	port, err := u.port()
	if err != nil {
		return nil, InvalidURLError{Key: "REDIS_URL", Cause: err}
	}

	s.Put("REDIS_HOST", u.hostname())
	s.Put("REDIS_PORT", port)
	s.Put("REDIS_PASSWORD", u.password())
	derived := []string{"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD"}

	db := strings.TrimPrefix(u.Path, "/")
	if len(db) == 0 {
		return derived, nil
	}
	n, err := strconv.Atoi(db)
	if err != nil || n < 0 {
		return nil, InvalidURLError{
			Key:   "REDIS_URL",
			Cause: fmt.Errorf("database must be a non-negative integer: %q", db),
		}
	}
	s.Put("REDIS_DB", n)
	return append(derived, "REDIS_DB"), nil
}

func deriveMongo(s *config.Settings) ([]string, error) {
	u, ok, err := lookupURL(s, "MONGO_URI")
	if !ok || err != nil {
		return nil, err
	}

	port, err := u.port()
	if err != nil {
		return nil, InvalidURLError{Key: "MONGO_URI", Cause: err}
	}

	s.Put("MONGODB_USER", u.username())
	s.Put("MONGODB_PASSWORD", u.password())
	s.Put("MONGODB_HOST", u.hostname())
	s.Put("MONGODB_PORT", port)
	s.Put("MONGODB_DB", strings.TrimPrefix(u.Path, "/"))
	return []string{"MONGODB_USER", "MONGODB_PASSWORD", "MONGODB_HOST", "MONGODB_PORT", "MONGODB_DB"}, nil
}

type connURL struct {
	*url.URL
}

func lookupURL(s *config.Settings, k string) (connURL, bool, error) {
	v, ok := s.Lookup(k)
	if !ok {
		return connURL{}, false, nil
	}

	raw, isString := v.(string)
	if !isString {
		return connURL{}, true, InvalidURLError{
			Key:   k,
			Cause: fmt.Errorf("expected a string but got %T", v),
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		// *url.Error quotes the raw url, password included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return connURL{}, true, InvalidURLError{Key: k, Cause: err}
	}
	return connURL{URL: u}, true, nil
}

// The accessors below return nil for absent components.

func (u connURL) hostname() any {
	h := u.Hostname()
	if len(h) == 0 {
		return nil
	}
	return strings.ToLower(h)
}

func (u connURL) port() (any, error) {
	p := u.Port()
	if len(p) == 0 {
		return nil, nil
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return nil, err
	}
	if n > 65535 {
		return nil, fmt.Errorf("port out of range: %d", n)
	}
	return n, nil
}

func (u connURL) username() any {
	if u.User == nil {
		return nil
	}
	return u.User.Username()
}

func (u connURL) password() any {
	if u.User == nil {
		return nil
	}
	p, ok := u.User.Password()
	if !ok {
		return nil
	}
	return p
}

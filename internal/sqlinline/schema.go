package sqlinline

// QCreateSchema is idempotent and applied by `pagectl migrate`.
const QCreateSchema = `--sql cc9e8f93-fedf-4a8f-b64d-d14fe395c6ee
create table if not exists cities (
    id          bigserial primary key,
    name        text not null,
    bundesland  text,
    slug        text not null unique,
    created_at  timestamptz not null default now()
);

create table if not exists page_cache (
    cache_key   text primary key,
    content     text not null,
    created_at  timestamptz not null default now(),
    expires_at  timestamptz not null
);

create index if not exists page_cache_expires_at_idx on page_cache (expires_at);

create table if not exists integration_tokens (
    provider    text primary key,
    token       text not null,
    properties  jsonb not null default '{}'::jsonb,
    created_at  timestamptz not null default now(),
    updated_at  timestamptz not null default now()
);
`

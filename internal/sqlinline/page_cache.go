package sqlinline

// Content is stored as text rather than jsonb so cached bodies are returned
// byte for byte as they were written.
const QSelectValidPageCache = `--sql 52361f8d-e6f6-464e-bd53-bf6d845af4e3
select content, created_at, expires_at
from page_cache
where cache_key = $1::text
  and expires_at > $2::timestamptz
limit 1;
`

const QUpsertPageCache = `--sql 9a099104-63ef-438d-be4d-83690247cdc3
insert into page_cache (cache_key, content, created_at, expires_at)
values ($1::text, $2::text, $3::timestamptz, $4::timestamptz)
on conflict (cache_key) do update set
    content = excluded.content,
    created_at = excluded.created_at,
    expires_at = excluded.expires_at;
`

package sqlinline

const QSelectIntegrationToken = `--sql 8d8e23e5-93ab-4fc6-83db-d91f613daaa1
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 492655cf-f318-4c20-a77b-81600f3f7110
insert into integration_tokens (provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`

package sqlinline

const QSelectCityBySlug = `--sql 3fb9b97c-ee79-489b-8e58-feb5c311e76c
select name, coalesce(bundesland, '') as bundesland, slug
from cities
where slug = $1::text
limit 1;
`

const QListCities = `--sql 5c990edb-048a-44fe-88aa-d4cd869817a6
select name, coalesce(bundesland, '') as bundesland, slug
from cities
order by name asc;
`

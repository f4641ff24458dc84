package scrape

// Page fixtures shaped like the platform markup the parsers target.

const retreatGuruSearchHTML = `<!doctype html>
<html>
<head><title>Yoga Retreats in Mexico | Retreat Guru</title></head>
<body>
<main>
  <article class="search-event-tile">
    <a class="search-event-tile__content" href="/events/1234-56/7-day-ocean-yoga">
      <h2> 7 Day Ocean Yoga Immersion </h2>
    </a>
    <div class="search-event-tile__location">
      <a href="/centers/987-1/casa-luz-tulum">Casa Luz Tulum</a>
      <span>Tulum, Mexico</span>
    </div>
    <div class="search-event-tile__dates"><a href="/events/1234-56/7-day-ocean-yoga">Mar 3 - 10, 2025</a></div>
    <div class="search-event-tile__price">From $1,450</div>
    <div class="search-event-tile__reviews">4.9 (32 reviews)</div>
  </article>
  <article class="search-event-tile">
    <a class="search-event-tile__content" href="/events/2222-10/breathwork-weekend#top">
      <h2>Breathwork Weekend</h2>
    </a>
    <div class="search-event-tile__location">
      <a href="/centers/987-1/casa-luz-tulum">Casa Luz Tulum</a>
      <span>Mexico</span>
    </div>
    <div class="search-event-tile__price">$600</div>
  </article>
  <article class="search-event-tile">
    <a class="search-event-tile__content" href="/events/3333-1/silent-sitting">
      <h2>Silent Sitting with Ana</h2>
    </a>
    <div class="search-event-tile__location">
      <a href="/centers/555-2/ana-ruiz-yoga">Ana Ruiz Yoga</a>
      <span>Oaxaca, Mexico</span>
    </div>
  </article>
  <article class="search-event-tile">
    <div class="search-event-tile__location"><span>Nowhere, Mexico</span></div>
  </article>
</main>
</body>
</html>
`

const retreatGuruCenterHTML = `<html>
<body>
  <h1>Casa Luz Tulum</h1>
  <div data-cy="center-location"> Carretera Tulum-Boca Paila Km 8, Tulum, Quintana Roo, Mexico </div>
  <div class="center-description">
    Casa Luz is a jungle eco retreat center with two shalas, twelve cabanas and a cenote,
    hosting visiting teachers throughout the year.
  </div>
</body>
</html>
`

const bookRetreatsSearchHTML = `<html>
<body>
  <a href="/r/7-day-tulum-yoga-retreat?utm=search">7 Day Tulum Yoga</a>
  <a href="/r/7-day-tulum-yoga-retreat">7 Day Tulum Yoga (image)</a>
  <a href="/r/s/yoga-retreats/mexico">More yoga retreats</a>
  <a href="/r/oaxaca-silent-retreat">Oaxaca Silent Retreat</a>
  <a href="/organizers/ana-ruiz">Ana Ruiz</a>
  <a href="https://example.com/r/elsewhere">Off-site</a>
  <a href="/r">All</a>
</body>
</html>
`

const bookRetreatsListingHTML = `<html>
<head>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"BreadcrumbList","itemListElement":[]}</script>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@graph": [
    {"@type": "Organization", "name": "BookRetreats"},
    {
      "@type": "Product",
      "name": "7 Day Tulum Yoga Retreat",
      "description": "Daily vinyasa, cenote swims and plant-based meals.",
      "brand": {"@type": "Organization", "name": "Wild Heart Yoga", "email": "hello@wildheart.example"},
      "location": {
        "@type": "Place",
        "address": {
          "@type": "PostalAddress",
          "streetAddress": "Calle 7 Sur 45",
          "addressLocality": "Tulum",
          "addressRegion": "Quintana Roo",
          "addressCountry": {"@type": "Country", "name": "Mexico"}
        },
        "geo": {"@type": "GeoCoordinates", "latitude": 20.2114, "longitude": -87.4654}
      },
      "offers": [{"@type": "Offer", "price": 1299, "priceCurrency": "EUR"}],
      "aggregateRating": {"@type": "AggregateRating", "ratingValue": 4.8, "reviewCount": 27},
      "startDate": "2025-03-01",
      "endDate": "2025-03-08"
    }
  ]
}
</script>
</head>
<body>
  <h1>Ignored heading</h1>
  <a href="/organizers/wild-heart-yoga">Wild Heart Yoga</a>
</body>
</html>
`

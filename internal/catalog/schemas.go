package catalog

import "github.com/udistrital/gestion_ofertas_mid/models"

var sectores = []string{
	"Informatique & Tech",
	"Santé & Bien-être",
	"Juridique",
	"Commerce & Vente",
	"Finance & Comptabilité",
	"Industrie",
	"Autre",
}

var baseBadges = map[string]Badge{
	models.EstadoBorrador:   {Label: "Brouillon", Color: "gray"},
	models.EstadoActivo:     {Label: "Active", Color: "green"},
	models.EstadoArchivado:  {Label: "Archivée", Color: "yellow"},
	models.EstadoPourvu:     {Label: "Pourvue", Color: "blue"},
	models.EstadoCerrado:    {Label: "Clôturée", Color: "red"},
	models.EstadoFinalizado: {Label: "Terminée", Color: "blue"},
}

func statuses(values ...string) []Status {
	out := make([]Status, 0, len(values))
	for _, v := range values {
		out = append(out, Status{Value: v, Badge: baseBadges[v]})
	}
	return out
}

func defaultToggles() map[string]string {
	return map[string]string{
		models.EstadoActivo:    models.EstadoArchivado,
		models.EstadoArchivado: models.EstadoActivo,
		models.EstadoBorrador:  models.EstadoActivo,
	}
}

// Alternance describe las ofertas de alternancia (apprentissage / professionnalisation).
var Alternance = register(&Schema{
	Kind:  "alternance",
	Path:  "alternances",
	Label: "Offres d'alternance",
	Fields: []Field{
		{Key: "title", Label: "Intitulé", Kind: FieldText, Required: true, MaxLen: 200, Column: true},
		{Key: "type", Label: "Contrat", Kind: FieldChoice, Required: true, Column: true,
			Choices: []string{"Apprentissage", "Professionnalisation", "Stage alterné"}},
		{Key: "niveau", Label: "Niveau", Kind: FieldChoice, Required: true, Column: true,
			Choices: []string{"CAP/BEP", "Bac", "Bac+2", "Bac+3", "Bac+5"}},
		{Key: "secteur", Label: "Secteur", Kind: FieldChoice, Required: true, Choices: sectores},
		{Key: "remuneration", Label: "Rémunération", Kind: FieldText},
		{Key: "duree", Label: "Durée", Kind: FieldText, Required: true},
		{Key: "rythme", Label: "Rythme", Kind: FieldText},
		{Key: "location", Label: "Lieu", Kind: FieldText, Required: true},
		{Key: "description", Label: "Description", Kind: FieldTextarea, Required: true},
		{Key: "nombrePostes", Label: "Postes", Kind: FieldInt, Min: intPtr(1), Max: intPtr(500), Default: "1"},
		{Key: "dateDebut", Label: "Début", Kind: FieldDate, Required: true, Column: true},
		{Key: "dateLimite", Label: "Date limite", Kind: FieldDate},
		{Key: "missions", Label: "Missions", Kind: FieldList},
		{Key: "competences", Label: "Compétences", Kind: FieldList},
		{Key: "avantages", Label: "Avantages", Kind: FieldList},
	},
	Statuses:      statuses(models.EstadoBorrador, models.EstadoActivo, models.EstadoArchivado, models.EstadoPourvu),
	DefaultStatus: models.EstadoBorrador,
	Toggles:       defaultToggles(),
	Filters:       []string{"type", models.KeyStatus, "niveau"},
	Counters: []Counter{
		{Name: "total", Label: "Offres", Kind: CounterAll},
		{Name: "actives", Label: "Actives", Kind: CounterStatus, Status: models.EstadoActivo},
		{Name: "candidatures", Label: "Candidatures", Kind: CounterSum, Field: "candidatures"},
		{Name: "pourvues", Label: "Pourvues", Kind: CounterStatus, Status: models.EstadoPourvu},
	},
	ReadOnly:   []string{"candidatures", "vues"},
	TitleField: "title",
})

// Emploi describe las ofertas de empleo.
var Emploi = register(&Schema{
	Kind:  "emploi",
	Path:  "emplois",
	Label: "Offres d'emploi",
	Fields: []Field{
		{Key: "title", Label: "Intitulé", Kind: FieldText, Required: true, MaxLen: 200, Column: true},
		{Key: "type", Label: "Contrat", Kind: FieldChoice, Required: true, Column: true,
			Choices: []string{"CDI", "CDD", "Freelance", "Intérim", "Temps partiel"}},
		{Key: "secteur", Label: "Secteur", Kind: FieldChoice, Required: true, Column: true, Choices: sectores},
		{Key: "experience", Label: "Expérience", Kind: FieldChoice, Required: true,
			Choices: []string{"Débutant (0-1 an)", "Junior (1-3 ans)", "Confirmé (3-5 ans)", "Senior (5+ ans)"}},
		{Key: "salaire", Label: "Salaire", Kind: FieldText, Required: true},
		{Key: "location", Label: "Lieu", Kind: FieldText, Required: true, Column: true},
		{Key: "description", Label: "Description", Kind: FieldTextarea, Required: true},
		{Key: "nombrePostes", Label: "Postes", Kind: FieldInt, Min: intPtr(1), Max: intPtr(500), Default: "1"},
		{Key: "dateDebut", Label: "Prise de poste", Kind: FieldDate},
		{Key: "dateLimite", Label: "Date limite", Kind: FieldDate, Column: true},
		{Key: "missions", Label: "Missions", Kind: FieldList},
		{Key: "competences", Label: "Compétences", Kind: FieldList},
		{Key: "avantages", Label: "Avantages", Kind: FieldList},
	},
	Statuses:      statuses(models.EstadoBorrador, models.EstadoActivo, models.EstadoArchivado, models.EstadoCerrado),
	DefaultStatus: models.EstadoBorrador,
	Toggles:       defaultToggles(),
	Filters:       []string{"type", models.KeyStatus, "secteur"},
	Counters: []Counter{
		{Name: "total", Label: "Offres", Kind: CounterAll},
		{Name: "actives", Label: "Actives", Kind: CounterStatus, Status: models.EstadoActivo},
		{Name: "candidatures", Label: "Candidatures", Kind: CounterSum, Field: "candidatures"},
		{Name: "urgentes", Label: "Urgentes", Kind: CounterDeadline, Field: "dateLimite", Days: 7, Status: models.EstadoActivo},
	},
	ReadOnly:   []string{"candidatures", "vues"},
	TitleField: "title",
})

// Formation describe los cursos de formación.
var Formation = register(&Schema{
	Kind:  "formation",
	Path:  "formations",
	Label: "Formations",
	Fields: []Field{
		{Key: "title", Label: "Intitulé", Kind: FieldText, Required: true, MaxLen: 200, Column: true},
		{Key: "type", Label: "Format", Kind: FieldChoice, Required: true, Column: true,
			Choices: []string{"Présentiel", "Distanciel", "Hybride"}},
		{Key: "niveau", Label: "Niveau", Kind: FieldChoice, Required: true,
			Choices: []string{"Débutant", "Intermédiaire", "Avancé"}},
		{Key: "categorie", Label: "Catégorie", Kind: FieldChoice, Required: true, Column: true, Choices: sectores},
		{Key: "prix", Label: "Prix (€)", Kind: FieldDecimal, Min: intPtr(0)},
		{Key: "duree", Label: "Durée", Kind: FieldText, Required: true},
		{Key: "places", Label: "Places", Kind: FieldInt, Min: intPtr(1), Max: intPtr(1000), Default: "10"},
		{Key: "location", Label: "Lieu", Kind: FieldText},
		{Key: "description", Label: "Description", Kind: FieldTextarea, Required: true},
		{Key: "dateDebut", Label: "Début", Kind: FieldDate, Required: true, Column: true},
		{Key: "dateFin", Label: "Fin", Kind: FieldDate},
		{Key: "dateLimite", Label: "Inscriptions jusqu'au", Kind: FieldDate},
		{Key: "programme", Label: "Programme", Kind: FieldList},
		{Key: "prerequis", Label: "Prérequis", Kind: FieldList},
		{Key: "objectifs", Label: "Objectifs", Kind: FieldList},
	},
	Statuses:      statuses(models.EstadoBorrador, models.EstadoActivo, models.EstadoArchivado, models.EstadoFinalizado),
	DefaultStatus: models.EstadoBorrador,
	Toggles:       defaultToggles(),
	Filters:       []string{"type", models.KeyStatus, "categorie"},
	Counters: []Counter{
		{Name: "total", Label: "Formations", Kind: CounterAll},
		{Name: "actives", Label: "Actives", Kind: CounterStatus, Status: models.EstadoActivo},
		{Name: "inscrits", Label: "Inscrits", Kind: CounterSum, Field: "inscriptions"},
		{Name: "a_venir", Label: "À venir", Kind: CounterStartAhead, Field: "dateDebut"},
	},
	ReadOnly:   []string{"inscriptions", "vues"},
	TitleField: "title",
})

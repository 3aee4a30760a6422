package customers

import (
	"math/rand/v2"

	"github.com/dvloznov/finance-synth/internal/sampling"
)

var firstNames = []string{
	"Ana", "Beatriz", "Camila", "Daniela", "Eduarda", "Fernanda", "Gabriela", "Helena",
	"Isabela", "Juliana", "Larissa", "Luana", "Mariana", "Natália", "Patrícia", "Rafaela",
	"Sofia", "Valentina", "Alice", "Laura", "Antônio", "Bruno", "Carlos", "Daniel",
	"Eduardo", "Felipe", "Gabriel", "Gustavo", "Henrique", "João", "Lucas", "Marcelo",
	"Mateus", "Miguel", "Pedro", "Rafael", "Rodrigo", "Thiago", "Vinícius", "Arthur",
}

var lastNames = []string{
	"Silva", "Santos", "Oliveira", "Souza", "Rodrigues", "Ferreira", "Alves", "Pereira",
	"Lima", "Gomes", "Costa", "Ribeiro", "Martins", "Carvalho", "Almeida", "Lopes",
	"Soares", "Fernandes", "Vieira", "Barbosa", "Rocha", "Dias", "Nascimento", "Andrade",
	"Moreira", "Nunes", "Marques", "Machado", "Mendes", "Freitas", "Cardoso", "Ramos",
	"Gonçalves", "Santana", "Teixeira", "Moraes", "Cavalcanti", "Pinto", "Correia", "Araújo",
}

var cities = []string{
	"São Paulo", "Rio de Janeiro", "Brasília", "Salvador", "Fortaleza", "Belo Horizonte",
	"Manaus", "Curitiba", "Recife", "Goiânia", "Belém", "Porto Alegre", "Guarulhos",
	"Campinas", "São Luís", "Maceió", "Natal", "Teresina", "João Pessoa", "Florianópolis",
	"Campo Grande", "Cuiabá", "Aracaju", "Vitória", "Londrina", "Ribeirão Preto", "Uberlândia",
	"Sorocaba", "Joinville", "Niterói",
}

// stateCodes are the 27 federative unit abbreviations.
var stateCodes = []string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS", "MG", "PA",
	"PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
}

// Faker produces pt-BR demographic strings from the generator's random source.
type Faker interface {
	Name() string
	City() string
	State() string
}

type ptBRFaker struct {
	r *rand.Rand
}

// NewFaker returns the default pt-BR faker drawing from r.
func NewFaker(r *rand.Rand) Faker {
	return &ptBRFaker{r: r}
}

// Name returns a first name followed by one or two surnames.
func (f *ptBRFaker) Name() string {
	name := sampling.Choice(f.r, firstNames) + " " + sampling.Choice(f.r, lastNames)
	if sampling.Bernoulli(f.r, 0.5) {
		name += " " + sampling.Choice(f.r, lastNames)
	}
	return name
}

func (f *ptBRFaker) City() string {
	return sampling.Choice(f.r, cities)
}

func (f *ptBRFaker) State() string {
	return sampling.Choice(f.r, stateCodes)
}

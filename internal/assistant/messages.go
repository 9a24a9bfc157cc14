package assistant

import (
	"fmt"
	"strings"

	"autosales-assistant-backend/internal/catalog"
	"autosales-assistant-backend/internal/llm"
	"autosales-assistant-backend/internal/locale"
	"autosales-assistant-backend/internal/session"
)

// replyText holds every user-facing string for one locale.
type replyText struct {
	Welcome     string
	Confirm     map[session.Mode]string
	GenericFail string
	AnalysisErr string
	ScriptErr   string
	Analyzing   string
	Scripting   string

	CRMHeading string
	CRMLabels  [5]string // name, status, previous purchase, budget, preferences
	CRMNone    string
	CRMUnset   string

	AnalysisTitle  string
	QualityLabel   string
	AnalysisLabel  string
	RecsLabel      string
	AnalysisFooter string
	Quality        map[llm.CallQuality]string
	ScriptHeader   string
	ScriptFooter   string
}

var replies = map[locale.Locale]replyText{
	locale.RU: {
		Welcome: `🏆 **Добро пожаловать в AI Sales MVP!**

Я ваш ИИ-ассистент по продажам премиальных автомобилей.

**🔧 Доступные режимы работы:**
• ` + "`анализ звонка`" + ` - анализ качества продаж
• ` + "`генерация скрипта`" + ` - создание скриптов продаж
• ` + "`продажи`" + ` - консультации по автомобилям (режим по умолчанию)

**💼 Демонстрация возможностей:**
Попробуйте написать: "Хочу Bentley" или "Интересует Rolls-Royce"

Чем могу помочь?`,
		Confirm: map[session.Mode]string{
			session.ModeAnalysis: `🔍 **Режим анализа звонков активирован**

Пришлите мне текст звонка для анализа. Я определю:
• Качество звонка (хороший/плохой)
• Что сработало, а что нет
• 3 конкретные рекомендации по улучшению

Ожидаю текст разговора...`,
			session.ModeScriptGen: `📝 **Режим генерации скрипта активирован**

Отправьте любое сообщение, и я создам профессиональный скрипт продаж на основе лучших практик.

Скрипт будет включать:
• Приветствие и установление контакта
• Выявление потребностей
• Презентация решения
• Работа с возражениями
• Закрытие сделки`,
			session.ModeSales: `💼 **Режим продаж активирован**

Я ваш персональный ИИ-консультант по премиальным автомобилям.
Задайте ваш вопрос о Bentley, Rolls-Royce или других люксовых брендах.

Пример запросов:
• "Хочу Bentley"
• "Что посоветуете в бюджете $300k?"
• "Нужен семейный автомобиль класса люкс"`,
		},
		GenericFail: "❌ Произошла ошибка при обработке запроса. Попробуйте еще раз или переформулируйте вопрос.",
		AnalysisErr: "❌ Не удалось проанализировать звонок. Убедитесь, что текст содержит диалог между менеджером и клиентом.",
		ScriptErr:   "❌ Не удалось создать скрипт. Попробуйте еще раз через несколько секунд.",
		Analyzing:   "🔍 **Анализирую звонок...**\n\nЭто может занять до минуты. Пожалуйста, подождите.",
		Scripting:   "📝 **Создаю профессиональный скрипт продаж...**\n\nЭто может занять до 90 секунд. Анализирую лучшие практики.",

		CRMHeading: "📊 **Данные клиента из CRM:**",
		CRMLabels:  [5]string{"Имя", "Статус", "Предыдущая покупка", "Бюджет", "Предпочтения"},
		CRMNone:    "Нет",
		CRMUnset:   "Не указаны",

		AnalysisTitle:  "📊 **Результат анализа звонка**",
		QualityLabel:   "🎯 **Качество звонка:**",
		AnalysisLabel:  "📝 **Детальный анализ:**",
		RecsLabel:      "💡 **Рекомендации по улучшению:**",
		AnalysisFooter: "💬 Для анализа нового звонка просто пришлите другой текст разговора.",
		Quality:        map[llm.CallQuality]string{llm.QualityGood: "хороший", llm.QualityBad: "плохой"},
		ScriptHeader:   "📋 **Профессиональный скрипт продаж создан!**\n\nОснован на анализе успешных звонков и лучших практик продаж.",
		ScriptFooter:   "💡 **Совет:** Адаптируйте скрипт под вашу специфику и стиль общения.\n📝 Для создания нового скрипта отправьте любое сообщение.",
	},
	locale.EN: {
		Welcome: `🏆 **Welcome to AI Sales MVP!**

I'm your AI sales assistant for premium automobiles.

**🔧 Available modes:**
• ` + "`call analysis`" + ` - sales quality analysis
• ` + "`script generation`" + ` - create sales scripts
• ` + "`sales`" + ` - automobile consultations (default mode)

**💼 Demo capabilities:**
Try typing: "Want Bentley" or "Interested in Rolls-Royce"

How can I help you?`,
		Confirm: map[session.Mode]string{
			session.ModeAnalysis: `🔍 **Call analysis mode activated**

Send me call text for analysis. I will determine:
• Call quality (good/bad)
• What worked and what didn't
• 3 specific improvement recommendations

Waiting for conversation text...`,
			session.ModeScriptGen: `📝 **Script generation mode activated**

Send any message and I'll create a professional sales script based on best practices.

Script will include:
• Greeting and rapport building
• Needs identification
• Solution presentation
• Objection handling
• Deal closing`,
			session.ModeSales: `💼 **Sales mode activated**

I'm your personal AI consultant for premium automobiles.
Ask your question about Bentley, Rolls-Royce or other luxury brands.

Example queries:
• "Want Bentley"
• "What do you recommend for $300k budget?"
• "Need luxury family car"`,
		},
		GenericFail: "❌ An error occurred while processing your request. Please try again or rephrase your question.",
		AnalysisErr: "❌ Failed to analyze the call. Make sure the text contains a dialogue between manager and client.",
		ScriptErr:   "❌ Failed to create script. Please try again in a few seconds.",
		Analyzing:   "🔍 **Analyzing call...**\n\nThis may take up to a minute. Please wait.",
		Scripting:   "📝 **Creating professional sales script...**\n\nThis may take up to 90 seconds. Analyzing best practices.",

		CRMHeading: "📊 **Client CRM Data:**",
		CRMLabels:  [5]string{"Name", "Status", "Previous Purchase", "Budget", "Preferences"},
		CRMNone:    "None",
		CRMUnset:   "Not specified",

		AnalysisTitle:  "📊 **Call Analysis Results**",
		QualityLabel:   "🎯 **Call Quality:**",
		AnalysisLabel:  "📝 **Detailed Analysis:**",
		RecsLabel:      "💡 **Improvement Recommendations:**",
		AnalysisFooter: "💬 To analyze another call, simply send another conversation text.",
		Quality:        map[llm.CallQuality]string{llm.QualityGood: "good", llm.QualityBad: "bad"},
		ScriptHeader:   "📋 **Professional Sales Script Created!**\n\nBased on analysis of successful calls and sales best practices.",
		ScriptFooter:   "💡 **Tip:** Adapt the script to your specifics and communication style.\n📝 To create a new script, send any message.",
	},
}

func textFor(loc locale.Locale) replyText {
	if t, ok := replies[loc]; ok {
		return t
	}
	return replies[locale.EN]
}

// crmBlock renders the profile summary shown above a sales reply.
func (t replyText) crmBlock(p catalog.ClientProfile) string {
	values := [5]string{
		orDefault(p.Name, t.CRMUnset),
		orDefault(p.DealStatus, t.CRMUnset),
		orDefault(p.PreviousPurchase, t.CRMNone),
		orDefault(p.Budget, t.CRMUnset),
		orDefault(p.Preferences, t.CRMUnset),
	}
	var b strings.Builder
	b.WriteString(t.CRMHeading)
	for i, label := range t.CRMLabels {
		fmt.Fprintf(&b, "\n• **%s:** %s", label, values[i])
	}
	return b.String()
}

func (t replyText) salesReply(p catalog.ClientProfile, suggestion string) string {
	return t.crmBlock(p) + "\n\n---\n\n" + suggestion
}

var numberEmoji = [...]string{"1️⃣", "2️⃣", "3️⃣"}

func (t replyText) analysisReply(a llm.CallAnalysis) string {
	quality, ok := t.Quality[a.Quality]
	if !ok {
		quality = string(a.Quality)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s %s\n\n%s\n%s\n\n%s", t.AnalysisTitle, t.QualityLabel, quality, t.AnalysisLabel, a.Analysis, t.RecsLabel)
	for i, r := range a.Recommendations {
		sep := "\n\n"
		if i == 0 {
			sep = "\n"
		}
		marker := fmt.Sprintf("%d.", i+1)
		if i < len(numberEmoji) {
			marker = numberEmoji[i]
		}
		fmt.Fprintf(&b, "%s%s %s", sep, marker, r)
	}
	b.WriteString("\n\n---\n")
	b.WriteString(t.AnalysisFooter)
	return b.String()
}

func (t replyText) scriptReply(script string) string {
	return t.ScriptHeader + "\n\n---\n\n" + script + "\n\n---\n" + t.ScriptFooter
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

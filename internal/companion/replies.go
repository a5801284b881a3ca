package companion

import "strings"

const namePlaceholder = "{name}"

func render(template, fullName string) string {
	return strings.ReplaceAll(template, namePlaceholder, fullName)
}

const (
	replyHowAreYou     = "I'm doing well, thank you for asking, {name}! I'm ready to help you with your health data. How are you feeling today? 💙"
	replyUserIdentity  = "You are {name}! I'm here to help you stay healthy, {name}. 💙"
	replyAgentIdentity = "I am your AI Health Companion, {name}. I'm here to monitor your vitals and answer your health questions. 🤝"

	replyInterpretNoData   = "I can't tell yet, {name}. Please add some health readings first so I can analyze them for you. 📊"
	replyInterpretAbnormal = "I see some values that are flagged as abnormal, {name}. It's best not to worry, but you should share these results with your doctor just to be safe. 💙"
	replyInterpretNormal   = "Yes, {name}! Based on your recent data, everything looks within the normal range. Keep up the good work! 🎉"
	replyInterpretUnknown  = "I'm not sure, {name}. I don't see enough data to give you a clear answer. Please try adding more readings."

	replySummaryNoData = "I don't see any health data recorded yet, {name}. Would you like to add some vitals in the Settings page? 📊"
	// The report is appended between the header and the footer.
	replySummaryAbnormalHeader = "Here's your recent health data, {name}:\n\n"
	replySummaryAbnormalFooter = "\n\nI noticed some values are outside the typical range. Please consult with your doctor to understand what this means for you. 💙"
	replySummaryNormalHeader   = "Here's what I found in your recent health data, {name}:\n\n"
	replySummaryNormalFooter   = "\n\nEverything looks good! Keep monitoring regularly. 💙"

	replyHeartRateValue   = "Your latest heart rate reading was {value}. Normal resting heart rate is typically 60-100 bpm. ❤️"
	replyHeartRateMissing = "I don't see a recent heart rate reading in your data, {name}. Please add one in the Settings page! 💓"
	replyHeartRateFact    = "Your heart rate is an important indicator of cardiovascular health. Normal resting heart rate is typically 60-100 bpm. If you notice anything unusual, please consult your doctor. ❤️"

	replyBloodPressureValue   = "Your latest blood pressure was {sys} (systolic) / {dia} (diastolic). Normal is typically below 120/80. 🩺"
	replyBloodPressureMissing = "I don't see a full blood pressure reading recently, {name}. Please update your vitals! 🩺"
	replyBloodPressureFact    = "Blood pressure is measured as systolic/diastolic (e.g., 120/80). Normal is typically below 120/80. High blood pressure should be monitored by a healthcare professional. 🩺"

	replySpO2Value   = "Your latest SpO2 reading was {value}. Levels below 95% may need medical attention. 🫁"
	replySpO2Missing = "I don't see a recent SpO2 reading, {name}. 🫁"
	replySpO2Fact    = "Blood oxygen (SpO2) should typically be 95-100%. Levels below 95% may need medical attention. Make sure to measure it properly! 🫁"

	replyGlucoseValue   = "Your latest glucose reading was {value}. Normal fasting glucose is 70-100 mg/dL. 🩸"
	replyGlucoseMissing = "I don't see a recent glucose reading, {name}. 🩸"
	replyGlucoseFact    = "Normal fasting glucose is 70-100 mg/dL. After meals, it can go up to 140 mg/dL. If you have diabetes, follow your doctor's guidance on target ranges. 🩸"

	replyTemperatureValue   = "Your latest temperature was {value}. Normal body temperature is around 98.6°F. 🌡️"
	replyTemperatureMissing = "I don't see a recent temperature reading, {name}. 🌡️"
	replyTemperatureFact    = "Normal body temperature is around 98.6°F (37°C). A fever is generally 100.4°F or higher. If you have a persistent fever, contact your doctor. 🌡️"

	// {greeting} is " " + name, or empty when the name is unknown.
	replyGreeting = "Hello{greeting}! 👋 I'm your AI Health Companion. I can help you understand your health data and answer questions about your vitals. How can I assist you today?"
	replyQuestion = "That's a great question, {name}! While I can help you understand your health data, I recommend discussing specific medical concerns with your doctor. Is there anything about your recent vitals you'd like me to explain? 💙"
	replyDefault  = "I'm here to help you understand your health data, {name}! You can ask me about your vitals, or add new readings in the Settings page. What would you like to know? 😊"
)

var randomReplies = map[Category][]string{
	CategoryManageBP: {
		"Managing blood pressure is very important, {name}. Here are some general tips: reduce salt intake, maintain a healthy weight, exercise regularly (like walking 30 minutes daily), limit alcohol, and manage stress. However, please discuss your specific readings with your doctor for personalized advice! 🩺",
		"Good question about blood pressure control! Generally: eat more fruits and vegetables, reduce sodium, stay active, and avoid smoking. But since your readings show some abnormality, it's crucial to consult your doctor for a proper treatment plan. 💙",
		"Blood pressure management typically involves lifestyle changes like eating less salt, exercising regularly, maintaining healthy weight, and reducing stress. Some people also need medication. Please talk to your doctor about the best approach for your specific situation! 🏥",
	},
	CategoryManageHR: {
		"To maintain a healthy heart rate, {name}: stay physically active with regular cardio exercise, manage stress through relaxation techniques, get adequate sleep (7-9 hours), limit caffeine and alcohol, and stay hydrated. If your heart rate is consistently abnormal, please see your doctor! ❤️",
		"Heart rate management involves regular exercise (which actually strengthens your heart over time), stress reduction, avoiding excessive caffeine, and maintaining good sleep habits. For persistent issues, your doctor might recommend specific treatments. 💓",
		"Good question! A healthy heart rate comes from: regular physical activity, stress management, proper hydration, limiting stimulants like caffeine, and getting enough rest. Always consult your doctor if you notice irregular patterns! 🫀",
	},
	CategoryManageGlucose: {
		"Managing blood glucose is crucial, {name}. Key strategies: eat balanced meals with complex carbs and fiber, exercise regularly, maintain healthy weight, monitor your levels as advised, limit sugary foods and drinks, and take medications as prescribed. Your doctor can create a personalized plan! 🩸",
		"Blood sugar control involves: eating at regular intervals, choosing whole grains over refined carbs, including protein and healthy fats in meals, staying active, managing stress, and monitoring your levels. Please work with your doctor for specific targets! 📊",
		"Great question about glucose management! Focus on: balanced diet with low glycemic foods, regular physical activity, weight management, stress reduction, and consistent meal timing. If you have diabetes, follow your doctor's medication and monitoring plan closely. 🍎",
	},
	CategoryManageSpO2: {
		"To maintain healthy oxygen levels, {name}: practice deep breathing exercises, stay physically active to strengthen lungs, maintain good posture, ensure good air quality in your home, and avoid smoking. If levels are consistently low, see your doctor immediately! 🫁",
		"Oxygen saturation can be improved through: regular breathing exercises, cardiovascular exercise, maintaining healthy weight, good posture, and avoiding pollutants. Low SpO2 can be serious - always consult your doctor if readings are below 95%! 💨",
		"Good question! Supporting healthy oxygen levels: do breathing exercises, stay active, keep airways clear, maintain good indoor air quality, and avoid smoking. Persistent low readings need immediate medical attention! 🌬️",
	},
	CategoryManageTemp: {
		"For managing fever or temperature, {name}: stay hydrated, rest adequately, use cool compresses if needed, dress in light clothing, and monitor your temperature regularly. For fever above 100.4°F or lasting more than 3 days, contact your doctor! 🌡️",
		"Temperature management tips: drink plenty of fluids, get rest, take fever-reducing medication if recommended by your doctor, use lukewarm baths (not cold), and monitor regularly. Seek medical help for high or persistent fever! 🏥",
		"To manage body temperature: stay hydrated, rest in a cool environment, use appropriate clothing, and monitor regularly. For fever, you can use over-the-counter fever reducers (as directed), but always consult your doctor for persistent or high fever! 💊",
	},
	CategoryExercise: {
		"Moving your body is great for you, {name}! 🏃‍♂️ Simple activities like walking, light stretching, or gardening can be very beneficial. Always check with your doctor before starting a new routine!",
		"Great question! Many people find that a daily 20-minute walk helps improve heart health and mood. 🌿 Just listen to your body and don't overdo it.",
		"Regular gentle movement is key, {name}. You don't need to run a marathon—just staying active helps! Ask your doctor what types of exercise are safe for you. 🧘",
	},
	CategoryDiet: {
		"They say 'you are what you eat'! 🍎 Generally, a balanced diet with plenty of vegetables, fruits, and whole grains is recommended. But for your specific needs, a nutritionist or your doctor is the best guide.",
		"Eating well is a huge part of staying healthy, {name}. 🥗 Try to stay hydrated and limit processed foods. Do you have any specific dietary restrictions your doctor mentioned?",
		"Good nutrition is powerful medicine. 🥕 Focusing on fresh, whole foods is usually a safe bet. However, please consult your doctor for a diet plan that fits your specific health conditions.",
	},
	CategoryGeneralAdvice: {
		"That's a good question, {name}. Generally, maintaining a healthy diet, staying hydrated, and regular gentle exercise can help. However, since every person is different, the best way to improve your specific condition is to share these readings with your doctor. 🩺",
		"I love that you're taking charge of your health, {name}! 🌟 Small steps like better sleep, drinking water, and reducing stress make a big difference. Be sure to discuss these results with your doctor for a tailored plan.",
		"Improving your health is a journey! 💙 Focusing on the basics—sleep, hydration, and movement—is a great start. But for these specific readings, your doctor's advice is the most important tool you have.",
	},
}

// Candidates returns every reply the category can produce for fullName when
// the reply is drawn at random, or nil for template categories.
func Candidates(category Category, fullName string) []string {
	templates := randomReplies[category]
	if len(templates) == 0 {
		return nil
	}
	out := make([]string, 0, len(templates))
	for _, template := range templates {
		out = append(out, render(template, fullName))
	}
	return out
}
